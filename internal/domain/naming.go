package domain

import (
	"fmt"
	"path/filepath"
)

// LocalStorePath returns the path to the local task store file.
func LocalStorePath(dataDir string) string {
	return filepath.Join(dataDir, "tasks.json")
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(dataDir string) string {
	return filepath.Join(dataDir, "logs", "teamcal.log")
}

// TaskLogPath returns the path to a task's log file.
func TaskLogPath(dataDir, taskID string) string {
	return filepath.Join(dataDir, "logs", fmt.Sprintf("task-%s.log", taskID))
}

// DataConfigPath returns the config path inside the data directory.
func DataConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigFileName)
}

// GlobalConfigDir returns the global config directory.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalConfigDir(configHome), ConfigFileName)
}

// DataDir returns the data directory under dataHome (XDG_DATA_HOME or ~/.local/share).
func DataDir(dataHome string) string {
	return filepath.Join(dataHome, AppDirName)
}
