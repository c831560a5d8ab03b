package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/dashboard"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/relocate"
)

// resizeCommand resizes a tile, relocating the tiles in its way.
func (c *CLI) resizeCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "resize <tile> <span_x> <span_y>",
		Short: "Resize a tile, moving the tiles it covers",
		Long: `Resize a tile to a new span. Tiles that would overlap the new footprint
are moved to the nearest free slots; when no valid arrangement exists the
board is left unchanged.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := intArgs(args[1:], "span_x", "span_y")
			if err != nil {
				return err
			}
			span := grid.Span{X: n[0], Y: n[1]}
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				return c.runResize(cmd, svc, args[0], span, dryRun)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without changing the board")
	return cmd
}

func (c *CLI) runResize(cmd *cobra.Command, svc *dashboard.Service, tileID string, span grid.Span, dryRun bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	resize := svc.Resize
	if dryRun {
		resize = svc.PlanResize
	}
	slow := svc.Strategy() != relocate.StrategyGreedy
	plan, err := withSpinner(ctx, slow, "Planning resize...", func() (relocate.Plan, error) {
		return resize(ctx, c.cfg.Board, tileID, span)
	})
	if err != nil {
		return err
	}

	if dryRun {
		printInfo("Resize of %s is feasible", tileID)
	} else {
		printSuccess("Resized %s to %s", tileID, plan.Span)
	}
	printPlan(plan)
	prog.done("Planned with " + plan.Strategy)
	return nil
}
