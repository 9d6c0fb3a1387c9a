package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/qcteam/teamcal/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	dataDir       string // Path to the data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/teamcal)
}

// NewManager creates a new Manager.
func NewManager(dataDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: DefaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(dataDir, globalConfDir string) *Manager {
	return &Manager{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// GetDataConfigInfo returns information about the data-directory config file.
func (m *Manager) GetDataConfigInfo() domain.ConfigInfo {
	return m.getConfigInfo(domain.DataConfigPath(m.dataDir))
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{}
	}
	return m.getConfigInfo(filepath.Join(m.globalConfDir, domain.ConfigFileName))
}

// getConfigInfo reads a config file and returns its info.
func (m *Manager) getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{
			Path:   path,
			Exists: false,
		}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitDataConfig creates a data-directory config file with the default template.
func (m *Manager) InitDataConfig(cfg *domain.Config) error {
	if err := os.MkdirAll(m.dataDir, 0o700); err != nil {
		return err
	}
	return m.initConfig(domain.DataConfigPath(m.dataDir), cfg)
}

// InitGlobalConfig creates a global config file with the default template.
func (m *Manager) InitGlobalConfig(cfg *domain.Config) error {
	if m.globalConfDir == "" {
		return errors.New("global config directory not available")
	}
	if err := os.MkdirAll(m.globalConfDir, 0o700); err != nil {
		return err
	}
	return m.initConfig(filepath.Join(m.globalConfDir, domain.ConfigFileName), cfg)
}

// initConfig creates a config file with the default template.
func (m *Manager) initConfig(path string, cfg *domain.Config) error {
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}
	content := domain.RenderConfigTemplate(cfg)
	return os.WriteFile(path, []byte(content), 0o600)
}
