package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings    []string          `toml:"-"`           // Unknown keys found while loading
	Remote      RemoteConfig      `toml:"remote"`      // [remote] settings
	Identity    IdentityConfig    `toml:"identity"`    // [identity] settings
	Calendar    CalendarConfig    `toml:"calendar"`    // [calendar] settings
	HTTP        HTTPConfig        `toml:"http"`        // [http] settings
	Log         LogConfig         `toml:"log"`         // [log] settings
	Maintenance MaintenanceConfig `toml:"maintenance"` // [maintenance] settings
}

// Remote store drivers.
const (
	RemoteDriverNone     = "none"
	RemoteDriverGit      = "git"
	RemoteDriverPostgres = "postgres"
	RemoteDriverMySQL    = "mysql"
	RemoteDriverSQLite   = "sqlite"
)

// RemoteConfig selects and configures the remote task store.
type RemoteConfig struct {
	Driver        string        `toml:"driver"`         // none, git, postgres, mysql, sqlite
	DSN           string        `toml:"dsn"`            // SQL data source name
	Repo          string        `toml:"repo"`           // Git repository path for the git driver
	Namespace     string        `toml:"namespace"`      // Git ref namespace
	EncryptionKey string        `toml:"encryption_key"` // Hex key or passphrase sealing git blobs
	PollInterval  time.Duration `toml:"poll_interval"`  // Realtime feed poll interval
	Fetch         bool          `toml:"fetch"`          // Fetch refs from origin before each poll
	Push          bool          `toml:"push"`           // Push refs to origin after each write
}

// IdentityConfig configures the anonymous identity provider.
type IdentityConfig struct {
	Endpoint string        `toml:"endpoint"` // Anonymous sign-up URL (empty = mint locally)
	Timeout  time.Duration `toml:"timeout"`  // Bounded wait for identity
	TTL      time.Duration `toml:"ttl"`      // Lifetime of locally minted credentials
}

// MaintenanceConfig configures scheduled maintenance.
type MaintenanceConfig struct {
	Interval time.Duration `toml:"interval"` // Re-run interval (0 = startup only)
}

// HTTPConfig configures the HTTP API.
type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// CalendarConfig configures the Google Calendar export.
type CalendarConfig struct {
	Credentials string `toml:"credentials"` // OAuth client JSON path
	Token       string `toml:"token"`       // OAuth token JSON path
	CalendarID  string `toml:"calendar_id"` // Target calendar
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level"` // Log level: debug, info, warn, error
}

// Default configuration values.
const (
	DefaultLogLevel         = "info"
	DefaultRemoteDriver     = RemoteDriverNone
	DefaultNamespace        = "teamcal"
	DefaultPollInterval     = 2 * time.Second
	DefaultIdentityTimeout  = 5 * time.Second
	DefaultIdentityTTL      = time.Hour
	DefaultHTTPAddr         = "127.0.0.1:8080"
	DefaultCalendarID       = "primary"
	ConfigFileName          = "config.toml"
	AppDirName              = "teamcal"
	DeleteConfirmationToken = "DELETE"
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			Driver:       DefaultRemoteDriver,
			Namespace:    DefaultNamespace,
			PollInterval: DefaultPollInterval,
		},
		Identity: IdentityConfig{
			Timeout: DefaultIdentityTimeout,
			TTL:     DefaultIdentityTTL,
		},
		HTTP: HTTPConfig{
			Addr: DefaultHTTPAddr,
		},
		Calendar: CalendarConfig{
			CalendarID: DefaultCalendarID,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// templateData holds data for the config template.
type templateData struct {
	Driver       string
	Namespace    string
	PollInterval string
	Timeout      string
	TTL          string
	Addr         string
	CalendarID   string
	LogLevel     string
}

// RenderConfigTemplate renders a commented config file populated with cfg's values.
func RenderConfigTemplate(cfg *Config) string {
	data := templateData{
		Driver:       cfg.Remote.Driver,
		Namespace:    cfg.Remote.Namespace,
		PollInterval: cfg.Remote.PollInterval.String(),
		Timeout:      cfg.Identity.Timeout.String(),
		TTL:          cfg.Identity.TTL.String(),
		Addr:         cfg.HTTP.Addr,
		CalendarID:   cfg.Calendar.CalendarID,
		LogLevel:     cfg.Log.Level,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}
	return buf.String()
}
