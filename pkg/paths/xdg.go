// Package paths resolves lograt's per-user directories.
//
// Resolution order:
// 1. LOGRAT_HOME (portable root) → $LOGRAT_HOME/{config,state}
// 2. XDG env vars → $XDG_{CONFIG,STATE}_HOME/lograt
// 3. Platform defaults → ~/.config/lograt, ~/.local/state/lograt
package paths

import (
	"os"
	"path/filepath"
)

const appName = "lograt"

func home(sub, xdgVar string, fallback ...string) string {
	if root := os.Getenv("LOGRAT_HOME"); root != "" {
		return filepath.Join(root, sub)
	}
	if xdg := os.Getenv(xdgVar); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(append(append([]string{homeDir}, fallback...), appName)...)
}

// ConfigDir holds the global lograt.yml.
func ConfigDir() string {
	return home("config", "XDG_CONFIG_HOME", ".config")
}

// StateDir holds lograt's own diagnostic logs.
func StateDir() string {
	return home("state", "XDG_STATE_HOME", ".local", "state")
}

// GlobalConfigFile returns the path of the global config file, whether or
// not it exists.
func GlobalConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "lograt.yml")
}
