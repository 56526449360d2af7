package env

import (
	"os"
	"path/filepath"
	"testing"
)

func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "VSHELL_TEST_TOKEN=hf_123\n# comment\nexport VSHELL_TEST_MODEL=\"tiny\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	unset(t, "VSHELL_TEST_TOKEN", "VSHELL_TEST_MODEL")
	if err := LoadFromDir(dir); err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if got := os.Getenv("VSHELL_TEST_TOKEN"); got != "hf_123" {
		t.Fatalf("expected VSHELL_TEST_TOKEN=hf_123, got %q", got)
	}
	if got := os.Getenv("VSHELL_TEST_MODEL"); got != "tiny" {
		t.Fatalf("expected VSHELL_TEST_MODEL=tiny, got %q", got)
	}
}

func TestLoadDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("VSHELL_TEST_TOKEN=from-file\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("VSHELL_TEST_TOKEN", "existing")
	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := os.Getenv("VSHELL_TEST_TOKEN"); got != "existing" {
		t.Fatalf("expected existing value preserved, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing file should be ignored, got %v", err)
	}
}

func TestLoadDefaultsReadsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.MkdirAll(filepath.Join(home, ".vshell"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, ".vshell", ".env"), []byte("VSHELL_TEST_HOME=yes\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	unset(t, "VSHELL_TEST_HOME")
	if err := LoadDefaults(); err != nil {
		t.Fatalf("LoadDefaults: %v", err)
	}
	if got := os.Getenv("VSHELL_TEST_HOME"); got != "yes" {
		t.Fatalf("expected VSHELL_TEST_HOME=yes, got %q", got)
	}
}
