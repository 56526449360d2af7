package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// DefaultDirName is the folder created under the launch directory when no root is configured.
const DefaultDirName = "workspace"

// DefaultForbiddenRoots lists host paths no operation may touch.
var DefaultForbiddenRoots = []string{
	"/", "/root", "/etc", "/bin", "/usr", "/lib", "/lib64", "/boot", "/dev", "/proc", "/sys", "/tmp",
}

// Workspace tracks the current directory of a shell and confines path resolution
// away from the forbidden roots. The zero value is not usable; see New.
type Workspace struct {
	root      string
	forbidden []string

	mu  sync.RWMutex
	cwd string
}

// DefaultRoot returns VSHELL_WORKSPACE when set, otherwise the workspace folder
// under the process working directory.
func DefaultRoot() string {
	if ws := os.Getenv("VSHELL_WORKSPACE"); ws != "" {
		return ws
	}
	pwd, _ := os.Getwd()
	return filepath.Join(pwd, DefaultDirName)
}

// New prepares root (creating it when absent) and returns a workspace whose
// current directory is the root. A nil forbidden list selects DefaultForbiddenRoots.
func New(root string, forbidden []string) (*Workspace, error) {
	if root == "" {
		root = DefaultRoot()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &RootError{Root: root, Cause: err}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, &RootError{Root: abs, Cause: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &RootError{Root: abs, Cause: err}
	}
	if !info.IsDir() {
		return nil, &RootError{Root: abs, Cause: fmt.Errorf("%w: %s", ErrNotADirectory, abs)}
	}

	if forbidden == nil {
		forbidden = DefaultForbiddenRoots
	}
	roots := make([]string, 0, len(forbidden))
	for _, f := range forbidden {
		if f == "" {
			continue
		}
		roots = append(roots, filepath.Clean(f))
	}

	return &Workspace{root: abs, forbidden: roots, cwd: abs}, nil
}

// Root returns the directory the workspace was created with.
func (w *Workspace) Root() string {
	return w.root
}

// ForbiddenRoots returns a copy of the deny-list.
func (w *Workspace) ForbiddenRoots() []string {
	out := make([]string, len(w.forbidden))
	copy(out, w.forbidden)
	return out
}

// Cwd returns the current directory.
func (w *Workspace) Cwd() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cwd
}

// Clone returns an independent workspace sharing root and deny-list, positioned at the root.
func (w *Workspace) Clone() *Workspace {
	return &Workspace{root: w.root, forbidden: w.ForbiddenRoots(), cwd: w.root}
}

// Resolve turns a user supplied path into an absolute one relative to the
// current directory. Empty input resolves to the current directory.
func (w *Workspace) Resolve(path string) (string, error) {
	path = strings.TrimSpace(path)

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(w.Cwd(), path))
	}

	if err := w.check(abs); err != nil {
		return "", err
	}

	// A symlink inside the workspace must not lead into a forbidden root either.
	real, err := securejoin.SecureJoin(string(filepath.Separator), abs)
	if err == nil && real != abs {
		if err := w.check(real); err != nil {
			return "", err
		}
	}
	return abs, nil
}

// Chdir moves the current directory to abs after re-checking it.
func (w *Workspace) Chdir(abs string) error {
	if err := w.check(abs); err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, abs)
	}
	w.mu.Lock()
	w.cwd = abs
	w.mu.Unlock()
	return nil
}

func (w *Workspace) check(abs string) error {
	sep := string(filepath.Separator)
	for _, root := range w.forbidden {
		if abs == root || strings.HasPrefix(abs, root+sep) {
			return &ViolationError{Path: abs, Root: root}
		}
	}
	return nil
}
