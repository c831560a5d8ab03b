package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/dashboard"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	pkgio "github.com/matzehuels/tilegrid/pkg/io"
	"github.com/matzehuels/tilegrid/pkg/render"
)

// =============================================================================
// Queries
// =============================================================================

// boardsCommand lists stored boards.
func (c *CLI) boardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List stored boards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				ids, err := svc.Boards(cmd.Context())
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				return nil
			})
		},
	}
}

// layoutCommand prints the calculated layout of the board.
func (c *CLI) layoutCommand() *cobra.Command {
	var asJSON, kinds bool
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Show the calculated layout of a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				res, err := svc.Layout(cmd.Context(), c.cfg.Board)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(res)
				}
				if err := writeLines(cmd.OutOrStdout(), render.Text(res, render.TextOptions{ShowKind: kinds})); err != nil {
					return err
				}
				for _, id := range res.Hidden {
					printWarning("%s lies outside the %s grid", id, res.Grid)
				}
				for _, id := range res.Conflicts {
					printError("%s overlaps an earlier tile and is not shown", id)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().BoolVar(&kinds, "kinds", false, "show tile kinds next to ids")
	return cmd
}

// tilesCommand lists the configured tiles of the board.
func (c *CLI) tilesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "tiles",
		Short: "List the configured tiles of a board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				doc, err := svc.Board(cmd.Context(), c.cfg.Board)
				if err != nil {
					return err
				}
				if asJSON {
					return pkgio.WriteJSON(doc, cmd.OutOrStdout())
				}
				if len(doc.Tiles) == 0 {
					printInfo("Board %s has no tiles", c.cfg.Board)
					return nil
				}
				return writeLines(cmd.OutOrStdout(), tileTable(doc))
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the board document as JSON")
	return cmd
}

// findCommand prints the first empty slot for a span.
func (c *CLI) findCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find <span_x> <span_y>",
		Short: "Find the first empty slot for a tile span",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := intArgs(args, "span_x", "span_y")
			if err != nil {
				return err
			}
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				at, err := svc.FirstEmpty(cmd.Context(), c.cfg.Board, grid.Span{X: n[0], Y: n[1]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", at.Row, at.Col)
				return nil
			})
		},
	}
}

// =============================================================================
// Edits
// =============================================================================

// addCommand adds a tile at the first empty slot.
func (c *CLI) addCommand() *cobra.Command {
	var spanX, spanY int
	var meta map[string]string
	cmd := &cobra.Command{
		Use:   "add <kind>",
		Short: "Add a tile at the first empty slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var m map[string]any
			if len(meta) > 0 {
				m = make(map[string]any, len(meta))
				for k, v := range meta {
					m[k] = v
				}
			}
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				t, err := svc.Add(cmd.Context(), c.cfg.Board, grid.Kind(args[0]), grid.Span{X: spanX, Y: spanY}, m)
				if err != nil {
					return err
				}
				printSuccess("Added %s %s at %s", t.Kind, StyleHighlight.Render(t.ID), t.Anchor)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&spanX, "span-x", 1, "tile width in cells")
	cmd.Flags().IntVar(&spanY, "span-y", 1, "tile height in cells")
	cmd.Flags().StringToStringVar(&meta, "meta", nil, "content settings as key=value pairs")
	return cmd
}

// duplicateCommand copies a tile to the first empty slot.
func (c *CLI) duplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <tile>",
		Short: "Copy a tile to the first empty slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				t, err := svc.Duplicate(cmd.Context(), c.cfg.Board, args[0])
				if err != nil {
					return err
				}
				printSuccess("Duplicated %s as %s at %s", args[0], StyleHighlight.Render(t.ID), t.Anchor)
				return nil
			})
		},
	}
}

// clearCommand removes a tile.
func (c *CLI) clearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <tile>",
		Short: "Remove a tile from the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				if err := svc.Clear(cmd.Context(), c.cfg.Board, args[0]); err != nil {
					return err
				}
				printSuccess("Cleared %s", args[0])
				return nil
			})
		},
	}
}

// moveCommand drags a tile to a new anchor.
func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <tile> <row> <col>",
		Short: "Move a tile, swapping with the tile anchored at the target",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := intArgs(args[1:], "row", "col")
			if err != nil {
				return err
			}
			to := grid.Cell{Row: n[0], Col: n[1]}
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				swapped, err := svc.Move(cmd.Context(), c.cfg.Board, args[0], to)
				if err != nil {
					return err
				}
				if swapped != "" {
					printSuccess("Swapped %s with %s", args[0], swapped)
				} else {
					printSuccess("Moved %s to %s", args[0], to)
				}
				return nil
			})
		},
	}
}

// gridCommand shows or changes the grid size.
func (c *CLI) gridCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grid [<rows> <cols>]",
		Short: "Show or change the grid size of a board",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 args, received %d", len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				if len(args) == 2 {
					n, err := intArgs(args, "rows", "cols")
					if err != nil {
						return err
					}
					if err := svc.SetGrid(cmd.Context(), c.cfg.Board, n[0], n[1]); err != nil {
						return err
					}
					printSuccess("Grid set to %dx%d", n[0], n[1])
					return nil
				}
				res, err := svc.Layout(cmd.Context(), c.cfg.Board)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %d\n", res.Grid.Rows, res.Grid.Cols)
				return nil
			})
		},
	}
}

// placeCommand anchors tiles that have no position yet.
func (c *CLI) placeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "place",
		Short: "Give unplaced tiles the first empty slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				placed, err := svc.PlaceUnplaced(cmd.Context(), c.cfg.Board)
				if err != nil {
					return err
				}
				if len(placed) == 0 {
					printInfo("All tiles are placed")
					return nil
				}
				printSuccess("Placed %d tiles", len(placed))
				for _, id := range placed {
					printDetail("%s", id)
				}
				return nil
			})
		},
	}
}

// =============================================================================
// Import / Export
// =============================================================================

// importCommand replaces the board with a JSON or TOML document.
func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace a board with a .json or .toml board file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := pkgio.Import(args[0])
			if err != nil {
				return err
			}
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				if err := svc.Replace(cmd.Context(), c.cfg.Board, doc); err != nil {
					return err
				}
				printSuccess("Imported %d tiles into %s", len(doc.Tiles), c.cfg.Board)
				return nil
			})
		},
	}
}

// exportCommand writes the board as a JSON or TOML document.
func (c *CLI) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write a board to a .json or .toml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				doc, err := svc.Board(cmd.Context(), c.cfg.Board)
				if err != nil {
					return err
				}
				if err := pkgio.Export(doc, args[0]); err != nil {
					return err
				}
				printSuccess("Exported %s", c.cfg.Board)
				printFile(args[0])
				return nil
			})
		},
	}
}

// =============================================================================
// Helpers
// =============================================================================

// intArgs parses args as integers; names label them in errors.
func intArgs(args []string, names ...string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			name := fmt.Sprintf("argument %d", i+1)
			if i < len(names) {
				name = names[i]
			}
			return nil, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a number", name, a)
		}
		out[i] = n
	}
	return out, nil
}
