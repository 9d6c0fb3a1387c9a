package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qcteam/teamcal/internal/app"
)

// newServeCommand creates the serve command for the HTTP API.
func newServeCommand(c *app.Container) *cobra.Command {
	var (
		addr      string
		logStderr bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the task API and its change stream over HTTP.

Maintenance re-runs on [maintenance] interval while serving.
Stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			cmd.SetContext(ctx)

			if logStderr {
				if m, ok := c.Logger.(interface{ SetMirror(io.Writer) }); ok {
					m.SetMirror(cmd.ErrOrStderr())
				}
			}

			if err := start(cmd, c); err != nil {
				return err
			}
			stop := c.StartMaintenance(ctx)
			defer stop()

			if addr == "" {
				addr = c.AppConfig.HTTP.Addr
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
			return c.HTTPServer().ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: [http] addr)")
	cmd.Flags().BoolVar(&logStderr, "log-stderr", false, "Also write log entries to stderr")

	return cmd
}
