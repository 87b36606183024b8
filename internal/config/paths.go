package config

import (
	"os"
	"path/filepath"
)

// Paths holds the filesystem locations cmdbox uses. Everything lives
// under a single base directory, ~/.cmdbox by default, overridable with
// CMDBOX_HOME.
type Paths struct {
	BaseDir string
}

// DefaultPaths resolves the base directory from the environment.
func DefaultPaths() Paths {
	if base := os.Getenv("CMDBOX_HOME"); base != "" {
		return Paths{BaseDir: base}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Last resort: relative to cwd. Callers creating files will
		// surface a clearer error if this is unusable.
		return Paths{BaseDir: ".cmdbox"}
	}
	return Paths{BaseDir: filepath.Join(home, ".cmdbox")}
}

// ConfigFile returns the config file path.
func (p Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir, "config.yaml")
}

// DatabaseFile returns the SQLite database path.
func (p Paths) DatabaseFile() string {
	return filepath.Join(p.BaseDir, "cmdbox.db")
}

// SocketFile returns the default unix socket path for serve mode.
func (p Paths) SocketFile() string {
	return filepath.Join(p.BaseDir, "cmdbox.sock")
}

// EnsureBaseDir creates the base directory if it does not exist.
func (p Paths) EnsureBaseDir() error {
	return os.MkdirAll(p.BaseDir, 0o755)
}
