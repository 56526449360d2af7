package system

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

const (
	// DefaultCPUInterval is how long CPU usage is sampled for.
	DefaultCPUInterval = 500 * time.Millisecond
	// NoProcesses is reported when the process table is empty.
	NoProcesses = "(no running processes)"
)

// ProcessInfo is one row of the process table. Name is empty when it could not be read.
type ProcessInfo struct {
	PID  int32
	Name string
}

// Stats answers the read-only system commands.
type Stats struct {
	Interval time.Duration

	cpuPercent    func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	listProcesses func(ctx context.Context) ([]ProcessInfo, error)
}

func NewStats() *Stats {
	return &Stats{
		Interval:      DefaultCPUInterval,
		cpuPercent:    cpu.PercentWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		listProcesses: processTable,
	}
}

// CPU samples overall CPU usage over Interval.
func (s *Stats) CPU(ctx context.Context) (string, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultCPUInterval
	}
	pct, err := s.cpuPercent(ctx, interval, false)
	if err != nil {
		return "", fmt.Errorf("cpu usage: %w", err)
	}
	if len(pct) == 0 {
		return "", fmt.Errorf("cpu usage: no samples")
	}
	return fmt.Sprintf("CPU Usage: %.1f%%", pct[0]), nil
}

func (s *Stats) Memory(ctx context.Context) (string, error) {
	vm, err := s.virtualMemory(ctx)
	if err != nil {
		return "", fmt.Errorf("memory usage: %w", err)
	}
	return fmt.Sprintf("Memory Usage: %.1f%%", vm.UsedPercent), nil
}

// Processes lists pid and name of every process, ordered by pid.
func (s *Stats) Processes(ctx context.Context) (string, error) {
	procs, err := s.listProcesses(ctx)
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}
	if len(procs) == 0 {
		return NoProcesses, nil
	}
	sort.Slice(procs, func(i, j int) bool { return procs[i].PID < procs[j].PID })

	lines := make([]string, 0, len(procs))
	for _, p := range procs {
		name := p.Name
		if name == "" {
			name = "?"
		}
		lines = append(lines, fmt.Sprintf("%d\t%s", p.PID, name))
	}
	return strings.Join(lines, "\n"), nil
}

func processTable(ctx context.Context) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProcessInfo, 0, len(procs))
	for _, p := range procs {
		// Processes exit or deny access while we iterate; keep the pid anyway.
		name, _ := p.NameWithContext(ctx)
		out = append(out, ProcessInfo{PID: p.Pid, Name: name})
	}
	return out, nil
}
