package cli

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/usecase"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage teamcal configuration files and settings.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigInitCommand(c))

	return cmd
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display effective configuration",
		Long: `Display effective configuration after merging all sources.

The data-directory config overrides the global config.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(w, "[Loaded from]")
			for _, info := range []domain.ConfigInfo{out.GlobalConfig, out.DataConfig} {
				if info.Exists {
					_, _ = fmt.Fprintf(w, "- %s\n", info.Path)
				} else {
					_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.Path)
				}
			}

			_, _ = fmt.Fprintln(w)

			_, _ = fmt.Fprintln(w, "[Effective Config]")
			return formatEffectiveConfig(w, out.EffectiveConfig)
		},
	}
}

// formatEffectiveConfig formats the effective config in TOML format.
// Sections are discovered from toml tags; durations print in Go syntax.
func formatEffectiveConfig(w io.Writer, cfg *domain.Config) error {
	output := make(map[string]any)

	cfgVal := reflect.ValueOf(cfg).Elem()
	cfgType := cfgVal.Type()
	for i := 0; i < cfgVal.NumField(); i++ {
		tag := cfgType.Field(i).Tag.Get("toml")
		if tag == "" || tag == "-" {
			continue
		}
		section := cfgVal.Field(i)
		if section.Kind() != reflect.Struct {
			continue
		}
		output[strings.Split(tag, ",")[0]] = sectionMap(section)
	}

	if err := toml.NewEncoder(w).Encode(output); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

func sectionMap(v reflect.Value) map[string]any {
	out := make(map[string]any)
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		tag := t.Field(i).Tag.Get("toml")
		if tag == "" || tag == "-" {
			continue
		}
		name := strings.Split(tag, ",")[0]
		val := v.Field(i).Interface()
		if name == "encryption_key" && val != "" {
			val = "<redacted>"
		}
		if d, ok := val.(time.Duration); ok {
			if d == 0 {
				continue
			}
			val = d.String()
		}
		out[name] = val
	}
	return out
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(c *app.Container) *cobra.Command {
	var global bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate configuration file template",
		Long: `Generate a commented configuration file.

By default, creates config.toml in the data directory.
With --global, creates ~/.config/teamcal/config.toml.

Error conditions:
- Target file already exists: error`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.ConfigLoader.Load()
			if err != nil {
				return err
			}

			out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{
				Global: global,
				Config: cfg,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", out.Path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&global, "global", false, "Generate global configuration")

	return cmd
}
