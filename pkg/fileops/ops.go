package fileops

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/sandbox"
	"github.com/docker/go-units"
)

// EmptyDirectory is reported by List for a directory without entries.
const EmptyDirectory = "(empty directory)"

// Ops implements the file commands of the shell. Every path goes through the
// workspace sandbox. Expected conditions (missing targets, existing names,
// wrong types) are reported as text, one line per target.
type Ops struct {
	ws          *sandbox.Workspace
	maxReadSize int64
}

func New(ws *sandbox.Workspace) *Ops {
	return &Ops{ws: ws}
}

// SetMaxReadSize limits the size of files Read returns. Zero disables the limit.
func (o *Ops) SetMaxReadSize(n int64) {
	o.maxReadSize = n
}

// MaxReadSize returns the current read limit in bytes.
func (o *Ops) MaxReadSize() int64 {
	return o.maxReadSize
}

func (o *Ops) Workspace() *sandbox.Workspace {
	return o.ws
}

// SplitTargets splits a target list on commas and whitespace.
func SplitTargets(arg string) []string {
	return strings.FieldsFunc(arg, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// List returns the sorted entries of a directory, the current one when arg is empty.
func (o *Ops) List(arg string) (string, error) {
	target := arg
	if strings.TrimSpace(target) == "" {
		target = "."
	}
	p, err := o.ws.Resolve(target)
	if err != nil {
		return "", err
	}
	entries, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Sprintf("No such directory: %s", arg), nil
		}
		return "", fmt.Errorf("list %s: %w", arg, err)
	}
	if len(entries) == 0 {
		return EmptyDirectory, nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}

func (o *Ops) PrintWorkingDir() string {
	return o.ws.Cwd()
}

func (o *Ops) ChangeDir(arg string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "Error: No directory specified."
	}
	p, err := o.ws.Resolve(arg)
	if err != nil {
		return err.Error()
	}
	if !isDir(p) {
		return fmt.Sprintf("No such directory: %s", arg)
	}
	if err := o.ws.Chdir(p); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Changed directory to %s", o.ws.Cwd())
}

func (o *Ops) MakeDirectories(arg string) string {
	names := SplitTargets(arg)
	if len(names) == 0 {
		return "Error: No directory name specified."
	}
	return o.each(names, func(name, p string) string {
		if exists(p) {
			return fmt.Sprintf("Directory already exists: %s", name)
		}
		if err := os.MkdirAll(p, 0o755); err != nil {
			return fmt.Sprintf("Cannot create directory '%s': %v", name, unwrapPath(err))
		}
		return fmt.Sprintf("Directory '%s' created.", name)
	})
}

func (o *Ops) TouchFiles(arg string) string {
	names := SplitTargets(arg)
	if len(names) == 0 {
		return "Error: No filename specified."
	}
	return o.each(names, func(name, p string) string {
		if exists(p) {
			return fmt.Sprintf("File already exists: %s", name)
		}
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			return fmt.Sprintf("Cannot create file '%s': %v", name, unwrapPath(err))
		}
		return fmt.Sprintf("File '%s' created.", name)
	})
}

// Remove deletes files and directories (recursively). Reports use the base
// name of the resolved path only.
func (o *Ops) Remove(arg string) string {
	targets := SplitTargets(arg)
	if len(targets) == 0 {
		return "Error: No target specified for remove."
	}
	return o.each(targets, func(_, p string) string {
		name := filepath.Base(p)
		info, err := os.Lstat(p)
		if err != nil {
			return fmt.Sprintf("No such file or directory: %s", name)
		}
		if info.IsDir() {
			if err := os.RemoveAll(p); err != nil {
				return fmt.Sprintf("Cannot remove directory '%s': %v", name, unwrapPath(err))
			}
			return fmt.Sprintf("Directory '%s' removed.", name)
		}
		if err := os.Remove(p); err != nil {
			return fmt.Sprintf("Cannot remove file '%s': %v", name, unwrapPath(err))
		}
		return fmt.Sprintf("File '%s' removed.", name)
	})
}

func (o *Ops) Read(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "Error: No file specified.", nil
	}
	p, err := o.ws.Resolve(arg)
	if err != nil {
		return err.Error(), nil
	}
	info, err := os.Stat(p)
	if err != nil {
		return fmt.Sprintf("No such file: %s", arg), nil
	}
	if info.IsDir() {
		return fmt.Sprintf("'%s' is a directory, not a file.", arg), nil
	}
	if o.maxReadSize > 0 && info.Size() > o.maxReadSize {
		return fmt.Sprintf("File too large to display: %s (%s > %s)",
			arg, units.HumanSize(float64(info.Size())), units.HumanSize(float64(o.maxReadSize))), nil
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", arg, err)
	}
	return string(data), nil
}

// Move moves every source into dest, which must be an existing directory.
func (o *Ops) Move(src, dest string) string {
	dest = strings.TrimSpace(dest)
	destPath, err := o.ws.Resolve(dest)
	if err != nil {
		return err.Error()
	}
	if !isDir(destPath) {
		return fmt.Sprintf("Destination folder does not exist: %s", dest)
	}
	return o.each(SplitTargets(src), func(s, p string) string {
		if !exists(p) {
			return fmt.Sprintf("No such file: %s", s)
		}
		if err := os.Rename(p, filepath.Join(destPath, filepath.Base(s))); err != nil {
			return fmt.Sprintf("Cannot move '%s': %v", s, unwrapPath(err))
		}
		return fmt.Sprintf("Moved '%s' to '%s'", s, dest)
	})
}

// each resolves every name and collects fn's status line, or the sandbox
// message when resolution fails.
func (o *Ops) each(names []string, fn func(name, path string) string) string {
	lines := make([]string, 0, len(names))
	for _, name := range names {
		p, err := o.ws.Resolve(name)
		if err != nil {
			lines = append(lines, err.Error())
			continue
		}
		lines = append(lines, fn(name, p))
	}
	return strings.Join(lines, "\n")
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func unwrapPath(err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Err
	}
	return err
}
