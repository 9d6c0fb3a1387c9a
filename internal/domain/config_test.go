package domain

import (
	"strings"
	"testing"
	"time"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Remote.Driver != RemoteDriverNone {
		t.Errorf("Remote.Driver = %q, want %q", cfg.Remote.Driver, RemoteDriverNone)
	}
	if cfg.Remote.PollInterval != DefaultPollInterval {
		t.Errorf("Remote.PollInterval = %v, want %v", cfg.Remote.PollInterval, DefaultPollInterval)
	}
	if cfg.Identity.Timeout != DefaultIdentityTimeout {
		t.Errorf("Identity.Timeout = %v, want %v", cfg.Identity.Timeout, DefaultIdentityTimeout)
	}
	if cfg.Maintenance.Interval != 0 {
		t.Errorf("Maintenance.Interval = %v, want 0", cfg.Maintenance.Interval)
	}
	if cfg.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.HTTP.Addr, DefaultHTTPAddr)
	}
}

func TestRenderConfigTemplate(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Remote.Driver = RemoteDriverGit
	cfg.Identity.Timeout = 3 * time.Second

	out := RenderConfigTemplate(cfg)

	for _, want := range []string{
		"[remote]",
		`driver = "git"`,
		`timeout = "3s"`,
		`addr = "127.0.0.1:8080"`,
		`level = "info"`,
		"# encryption_key",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("template missing %q", want)
		}
	}
	if strings.Contains(out, "<<") {
		t.Error("template has unrendered placeholders")
	}
}
