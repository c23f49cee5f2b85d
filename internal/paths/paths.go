package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	appName = "cruxpkg"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the directory for runtime files (sockets, PIDs).
//
//	Linux:   $XDG_RUNTIME_DIR/cruxpkg or /run/user/<uid>/cruxpkg
//	macOS:   ~/Library/Caches/cruxpkg/run
func Runtime() string {
	if xdg.RuntimeDir != "" {
		return filepath.Join(xdg.RuntimeDir, appName)
	}
	return filepath.Join(xdg.CacheHome, appName, "run")
}

// Default path to the Unix domain socket of the daemon.
//
//	Linux:   $XDG_RUNTIME_DIR/cruxpkg/cruxpkg.sock
//	macOS:   ~/Library/Caches/cruxpkg/run/cruxpkg.sock
func Socket() string {
	return filepath.Join(Runtime(), "cruxpkg.sock")
}

// Default path to the daemon PID file.
//
//	Linux:   $XDG_RUNTIME_DIR/cruxpkg/cruxpkg.pid
//	macOS:   ~/Library/Caches/cruxpkg/run/cruxpkg.pid
func PIDFile() string {
	return filepath.Join(Runtime(), "cruxpkg.pid")
}

// Path to the optional configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/cruxpkg/config.yaml
//	macOS:   ~/Library/Application Support/cruxpkg/config.yaml
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}
