package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/testutil"
)

func TestRootCommand_NoArgsLaunchesTUI(t *testing.T) {
	c := newSession(t, testutil.NewMemoryLocal())

	var launched *app.Container
	orig := launchTUIFunc
	launchTUIFunc = func(got *app.Container) error {
		launched = got
		return nil
	}
	t.Cleanup(func() { launchTUIFunc = orig })

	root := NewRootCommand(c, "test")
	root.SetArgs([]string{})
	require.NoError(t, root.Execute())
	assert.Same(t, c, launched)
}

func TestRootCommand_TUIError(t *testing.T) {
	orig := launchTUIFunc
	launchTUIFunc = func(*app.Container) error { return errors.New("no tty") }
	t.Cleanup(func() { launchTUIFunc = orig })

	root := NewRootCommand(newSession(t, testutil.NewMemoryLocal()), "test")
	root.SetArgs([]string{})
	assert.EqualError(t, root.Execute(), "no tty")
}

func TestRootCommand_Help(t *testing.T) {
	root := NewRootCommand(newSession(t, testutil.NewMemoryLocal()), "1.2.3")
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"--help"})

	require.NoError(t, root.Execute())
	out := buf.String()
	assert.Contains(t, out, "Setup Commands:")
	assert.Contains(t, out, "Task Management:")
	assert.Contains(t, out, "Views and Maintenance:")
	for _, name := range []string{"add", "list", "done", "rm", "calendar", "serve", "export-calendar"} {
		assert.Contains(t, out, name)
	}
}

func TestRootCommand_PrintsConfigWarnings(t *testing.T) {
	c := newSession(t, testutil.NewMemoryLocal())
	c.AppConfig = domain.NewDefaultConfig()
	c.AppConfig.Warnings = []string{"unknown key \"remote.colour\""}

	root := NewRootCommand(c, "test")
	var stderr bytes.Buffer
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&stderr)
	root.SetArgs([]string{"cleanup"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stderr.String(), "Warning: unknown key \"remote.colour\"")
}

func TestLaunchTUI_NilContainer(t *testing.T) {
	assert.Error(t, launchTUI(nil))
}
