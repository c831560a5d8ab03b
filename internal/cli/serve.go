package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/internal/server"
	"github.com/matzehuels/tilegrid/pkg/dashboard"
	"github.com/matzehuels/tilegrid/pkg/observability"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board API over HTTP",
		Long: `Serve the board API over HTTP. All boards in the configured store are
reachable below /boards/{id}; edits from concurrent clients are applied
one at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}
			observability.SetHTTPHooks(logHooks{c.Logger})
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				printInfo("Serving %s on %s", StyleHighlight.Render(svc.Strategy()+" planner"), StyleValue.Render(c.cfg.Server.Addr))
				srv := server.New(svc, c.Logger)
				if err := srv.ListenAndServe(cmd.Context(), c.cfg.Server.Addr); err != nil {
					return err
				}
				printSuccess("Server stopped")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}
