package version

import "testing"

func TestString(t *testing.T) {
	Version, GitCommit, BuildDate = "1.2.3", "abc123", "2026-01-02T03:04:05Z"
	t.Cleanup(func() { Version, GitCommit, BuildDate = "dev", "unknown", "unknown" })

	if got, want := String(), "vshell 1.2.3 (commit abc123, built 2026-01-02T03:04:05Z)"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if info := Get(); info.Name != Name || info.Version != "1.2.3" {
		t.Fatalf("unexpected info: %+v", info)
	}
}
