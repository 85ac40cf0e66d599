// Package workspace lays out the babble home directory.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"

	"babble/internal/config"
)

const BaseDirName = ".babble"

type Layout struct {
	Root       string
	DataDir    string
	LogDir     string
	ImportsDir string
	ConfigPath string
	DBPath     string
}

func EnsureDefault() (*Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home: %w", err)
	}
	return EnsureAt(filepath.Join(home, BaseDirName))
}

// EnsureAt creates the directory tree under base and writes a default
// babble.yaml pointing at base/data/babble.db when none exists yet.
func EnsureAt(base string) (*Layout, error) {
	l := &Layout{
		Root:       base,
		DataDir:    filepath.Join(base, "data"),
		LogDir:     filepath.Join(base, "logs"),
		ImportsDir: filepath.Join(base, "imports"),
		ConfigPath: filepath.Join(base, config.FileName),
	}
	l.DBPath = filepath.Join(l.DataDir, "babble.db")

	for _, p := range []string{l.DataDir, l.LogDir, l.ImportsDir} {
		if err := os.MkdirAll(p, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", p, err)
		}
	}

	if _, err := os.Stat(l.ConfigPath); os.IsNotExist(err) {
		defaults := config.Default()
		defaults.DB.Path = l.DBPath
		if err := config.Save(l.ConfigPath, defaults); err != nil {
			return nil, err
		}
	}
	return l, nil
}
