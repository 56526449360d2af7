// Package env loads secrets such as HF_TOKEN from .env files.
package env

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadFromDir loads dir/.env if it exists.
func LoadFromDir(dir string) error {
	return Load(filepath.Join(dir, ".env"))
}

// Load reads path into the process environment. Variables that are already
// set win over the file, and a missing file is not an error.
func Load(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// LoadDefaults loads .env from the working directory and then from
// ~/.vshell, so the working directory takes precedence.
func LoadDefaults() error {
	var errs []error
	if wd, err := os.Getwd(); err == nil {
		errs = append(errs, LoadFromDir(wd))
	}
	if home, err := os.UserHomeDir(); err == nil {
		errs = append(errs, LoadFromDir(filepath.Join(home, ".vshell")))
	}
	return errors.Join(errs...)
}
