package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
)

func TestCanRunWithoutContainer(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want bool
	}{
		{
			name: "no args",
			args: nil,
			want: false,
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: true,
		},
		{
			name: "version flag",
			args: []string{"--version"},
			want: true,
		},
		{
			name: "help subcommand",
			args: []string{"help", "add"},
			want: true,
		},
		{
			name: "subcommand help",
			args: []string{"add", "-h"},
			want: true,
		},
		{
			name: "non-allowed command",
			args: []string{"add", "--title", "test"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canRunWithoutContainer(tt.args); got != tt.want {
				t.Fatalf("canRunWithoutContainer(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestRun_BrokenConfigAllowsHelp(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("TEAMCAL_DATA_DIR", dataDir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte("[remote]\ndriver = \"carrier-pigeon\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	originalRoot := newRootCommand
	t.Cleanup(func() { newRootCommand = originalRoot })
	var got *app.Container
	newRootCommand = func(c *app.Container, version string) *cobra.Command {
		got = c
		cmd := originalRoot(c, version)
		cmd.SetOut(io.Discard)
		return cmd
	}

	if err := run([]string{"--help"}); err != nil {
		t.Fatalf("run(--help) returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil container for a broken config")
	}
	if err := run([]string{"list"}); err == nil {
		t.Fatalf("expected an initialization error")
	}
}
