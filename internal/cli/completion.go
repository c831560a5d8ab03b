package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/dashboard"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tilegrid. Tile ids and board ids
are completed from the configured store.

Bash:
  $ source <(tilegrid completion bash)

Zsh:
  $ tilegrid completion zsh > "${fpath[1]}/_tilegrid"

Fish:
  $ tilegrid completion fish > ~/.config/fish/completions/tilegrid.fish

PowerShell:
  PS> tilegrid completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions wires dynamic completion of tile ids into the
// commands that take one as first argument, and of board ids into --board.
func (c *CLI) registerCompletions(root *cobra.Command) {
	for _, sub := range root.Commands() {
		switch sub.Name() {
		case "clear", "duplicate", "move", "resize":
			sub.ValidArgsFunction = c.completeTileIDs
		}
	}
	_ = root.RegisterFlagCompletionFunc("board", c.completeBoardIDs)
}

// completeTileIDs completes the first argument with the tile ids of the
// selected board. Completion runs without the root's pre-run hook, so the
// config is loaded here.
func (c *CLI) completeTileIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	err := c.completionService(cmd, func(svc *dashboard.Service) error {
		doc, err := svc.Board(cmd.Context(), c.cfg.Board)
		if err != nil {
			return err
		}
		for _, t := range doc.Tiles {
			ids = append(ids, t.ID+"\t"+t.Kind)
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeBoardIDs completes --board with the stored board ids.
func (c *CLI) completeBoardIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var ids []string
	err := c.completionService(cmd, func(svc *dashboard.Service) error {
		var err error
		ids, err = svc.Boards(cmd.Context())
		return err
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

func (c *CLI) completionService(cmd *cobra.Command, fn func(*dashboard.Service) error) error {
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	if err := c.loadConfig(cmd, nil); err != nil {
		return err
	}
	return c.withService(cmd.Context(), fn)
}
