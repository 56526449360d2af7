package system

import (
	"context"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// Profile describes the host the shell runs on.
type Profile struct {
	OS       string `json:"os"`
	Distro   string `json:"distro,omitempty"`
	Version  string `json:"version,omitempty"`
	Kernel   string `json:"kernel,omitempty"`
	Arch     string `json:"arch"`
	Hostname string `json:"hostname,omitempty"`
	Shell    string `json:"shell,omitempty"`
	Uptime   uint64 `json:"uptime_seconds,omitempty"`
}

// Detect gathers the host profile. Fields gopsutil cannot read are left
// empty; the returned error is informational only.
func Detect() (*Profile, error) {
	return DetectContext(context.Background())
}

func DetectContext(ctx context.Context) (*Profile, error) {
	profile := &Profile{
		OS:    runtime.GOOS,
		Arch:  runtime.GOARCH,
		Shell: os.Getenv("SHELL"),
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		profile.Hostname, _ = os.Hostname()
		return profile, err
	}
	profile.Distro = info.Platform
	profile.Version = info.PlatformVersion
	profile.Kernel = info.KernelVersion
	profile.Hostname = info.Hostname
	profile.Uptime = info.Uptime
	if info.KernelArch != "" {
		profile.Arch = info.KernelArch
	}
	return profile, nil
}
