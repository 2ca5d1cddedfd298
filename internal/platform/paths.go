// Package platform resolves OS-specific application directories.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appDirName     = "DevBoost"
	subsystemName  = "file_optimization"
	backupsDirName = "file_optimization_backups"
)

// ConfigDir returns the per-user configuration directory for the optimizer
// (settings and presets live here). The directory is not created.
func ConfigDir() (string, error) {
	base, err := baseConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName, subsystemName), nil
}

// BackupDir returns the per-user data directory used for backup copies of
// original files. The directory is not created.
func BackupDir() (string, error) {
	base, err := baseConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName, backupsDirName), nil
}

func baseConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support"), nil

	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, "AppData", "Roaming"), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, ".config"), nil
	}
}
