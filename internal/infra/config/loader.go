// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/qcteam/teamcal/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to the data directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/teamcal)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: DefaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// DefaultGlobalConfigDir returns the default global config directory.
func DefaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// DefaultDataDir resolves the data directory: $TEAMCAL_DATA_DIR, then
// $XDG_DATA_HOME/teamcal, then ~/.local/share/teamcal.
func DefaultDataDir() (string, error) {
	if dir := os.Getenv("TEAMCAL_DATA_DIR"); dir != "" {
		return dir, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return domain.DataDir(dataHome), nil
}

// Load returns the merged configuration (data dir + global).
// Data-dir config takes precedence over global config.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	local, err := l.LoadData()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// Merge: default <- global <- data dir (later takes precedence)
	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if local != nil {
		base = mergeConfigs(base, local)
	}
	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadData returns only the data-directory configuration.
func (l *Loader) LoadData() (*domain.Config, error) {
	return l.loadFile(domain.DataConfigPath(l.dataDir))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// sectionParser collects values and warnings for one [section].
type sectionParser struct {
	warnings *[]string
	section  string
}

func (p sectionParser) unknown(key string) {
	*p.warnings = append(*p.warnings, fmt.Sprintf("unknown key in [%s]: %s", p.section, key))
}

func (p sectionParser) str(key string, v any, dst *string) {
	if s, ok := v.(string); ok {
		*dst = s
		return
	}
	*p.warnings = append(*p.warnings, fmt.Sprintf("[%s].%s must be a string", p.section, key))
}

func (p sectionParser) boolean(key string, v any, dst *bool) {
	if b, ok := v.(bool); ok {
		*dst = b
		return
	}
	*p.warnings = append(*p.warnings, fmt.Sprintf("[%s].%s must be a boolean", p.section, key))
}

func (p sectionParser) duration(key string, v any, dst *time.Duration) {
	s, ok := v.(string)
	if !ok {
		*p.warnings = append(*p.warnings, fmt.Sprintf("[%s].%s must be a duration string", p.section, key))
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		*p.warnings = append(*p.warnings, fmt.Sprintf("[%s].%s: invalid duration %q", p.section, key, s))
		return
	}
	*dst = d
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
			continue
		}
		p := sectionParser{section: section, warnings: &warnings}

		switch section {
		case "remote":
			for k, v := range m {
				switch k {
				case "driver":
					p.str(k, v, &res.Remote.Driver)
				case "dsn":
					p.str(k, v, &res.Remote.DSN)
				case "repo":
					p.str(k, v, &res.Remote.Repo)
				case "namespace":
					p.str(k, v, &res.Remote.Namespace)
				case "encryption_key":
					p.str(k, v, &res.Remote.EncryptionKey)
				case "poll_interval":
					p.duration(k, v, &res.Remote.PollInterval)
				case "fetch":
					p.boolean(k, v, &res.Remote.Fetch)
				case "push":
					p.boolean(k, v, &res.Remote.Push)
				default:
					p.unknown(k)
				}
			}
		case "identity":
			for k, v := range m {
				switch k {
				case "endpoint":
					p.str(k, v, &res.Identity.Endpoint)
				case "timeout":
					p.duration(k, v, &res.Identity.Timeout)
				case "ttl":
					p.duration(k, v, &res.Identity.TTL)
				default:
					p.unknown(k)
				}
			}
		case "maintenance":
			for k, v := range m {
				switch k {
				case "interval":
					p.duration(k, v, &res.Maintenance.Interval)
				default:
					p.unknown(k)
				}
			}
		case "http":
			for k, v := range m {
				switch k {
				case "addr":
					p.str(k, v, &res.HTTP.Addr)
				default:
					p.unknown(k)
				}
			}
		case "calendar":
			for k, v := range m {
				switch k {
				case "credentials":
					p.str(k, v, &res.Calendar.Credentials)
				case "token":
					p.str(k, v, &res.Calendar.Token)
				case "calendar_id":
					p.str(k, v, &res.Calendar.CalendarID)
				default:
					p.unknown(k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					p.str(k, v, &res.Log.Level)
				default:
					p.unknown(k)
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// mergeConfigs merges two configs, with override taking precedence.
// Zero values in override leave base untouched.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	if len(override.Warnings) > 0 {
		result.Warnings = append(slices.Clip(base.Warnings), override.Warnings...)
	}

	setStr(&result.Remote.Driver, override.Remote.Driver)
	setStr(&result.Remote.DSN, override.Remote.DSN)
	setStr(&result.Remote.Repo, override.Remote.Repo)
	setStr(&result.Remote.Namespace, override.Remote.Namespace)
	setStr(&result.Remote.EncryptionKey, override.Remote.EncryptionKey)
	setDur(&result.Remote.PollInterval, override.Remote.PollInterval)
	if override.Remote.Fetch {
		result.Remote.Fetch = true
	}
	if override.Remote.Push {
		result.Remote.Push = true
	}

	setStr(&result.Identity.Endpoint, override.Identity.Endpoint)
	setDur(&result.Identity.Timeout, override.Identity.Timeout)
	setDur(&result.Identity.TTL, override.Identity.TTL)

	setDur(&result.Maintenance.Interval, override.Maintenance.Interval)
	setStr(&result.HTTP.Addr, override.HTTP.Addr)

	setStr(&result.Calendar.Credentials, override.Calendar.Credentials)
	setStr(&result.Calendar.Token, override.Calendar.Token)
	setStr(&result.Calendar.CalendarID, override.Calendar.CalendarID)

	setStr(&result.Log.Level, override.Log.Level)
	return &result
}

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDur(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}
