package config

import (
	"path/filepath"
)

// AppName is used in generating file system paths.
var AppName = "gnoccur"

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnoccur by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/gnoccur by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnoccur/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnoccur/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// AssaysFilePath returns the full path to the assays.yaml file.
// Returns ~/.config/gnoccur/assays.yaml by default.
func AssaysFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "assays.yaml")
}
