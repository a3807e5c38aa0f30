package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func (r *runner) newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server on the configured address.

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  helium serve
  helium serve --port 9000
  helium serve --config config/production.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := r.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			a, err := r.newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			_, info, _, _ := r.colors()
			info.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", cfg.Server.Addr())
			return a.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Override server.port")

	return cmd
}
