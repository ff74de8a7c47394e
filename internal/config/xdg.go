// Package config provides configuration management for shade with Viper
// integration and XDG Base Directory compliance.
package config

import (
	"os"
	"path/filepath"
)

const (
	appName      = "shade"
	configName   = "config"
	stateName    = "state.json"
	databaseName = "shade.sqlite"
)

// XDGDirs holds the XDG Base Directory paths for the application.
type XDGDirs struct {
	ConfigHome string
	DataHome   string
	StateHome  string
}

// GetXDGDirs returns the XDG Base Directory paths for shade:
// - $XDG_CONFIG_HOME/shade (default: ~/.config/shade)
// - $XDG_DATA_HOME/shade (default: ~/.local/share/shade)
// - $XDG_STATE_HOME/shade (default: ~/.local/state/shade)
func GetXDGDirs() (*XDGDirs, error) {
	// Development mode: use .dev directory in current working directory
	if os.Getenv("ENV") == "dev" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		devDir := filepath.Join(cwd, ".dev", appName)
		return &XDGDirs{
			ConfigHome: devDir,
			DataHome:   devDir,
			StateHome:  devDir,
		}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(homeDir, ".config")
	}
	configHome = filepath.Join(configHome, appName)

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	dataHome = filepath.Join(dataHome, appName)

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		stateHome = filepath.Join(homeDir, ".local", "state")
	}
	stateHome = filepath.Join(stateHome, appName)

	return &XDGDirs{
		ConfigHome: configHome,
		DataHome:   dataHome,
		StateHome:  stateHome,
	}, nil
}

// GetConfigDir returns the configuration directory, creating it if needed.
func GetConfigDir() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirs.ConfigHome, 0755); err != nil {
		return "", err
	}
	return dirs.ConfigHome, nil
}

// GetStateFile returns the default path of the persisted theme state file.
func GetStateFile() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.StateHome, stateName), nil
}

// GetDatabaseFile returns the default path of the sqlite state database.
func GetDatabaseFile() (string, error) {
	dirs, err := GetXDGDirs()
	if err != nil {
		return "", err
	}
	return filepath.Join(dirs.DataHome, databaseName), nil
}
