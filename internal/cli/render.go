package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tilegrid/pkg/dashboard"
	"github.com/matzehuels/tilegrid/pkg/layout"
	"github.com/matzehuels/tilegrid/pkg/render"
)

const (
	formatText = "text"
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPNG  = "png"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{formatText: true, formatDOT: true, formatSVG: true, formatPNG: true}

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output           string // output file path; stdout when empty
	format           string // text, dot, svg or png
	title            string // diagram title
	cellSize         int    // cell edge length in points (dot, svg, png)
	cellWidth        int    // characters per cell (text)
	kinds            bool   // show tile kinds in text output
	hidePlaceholders bool   // leave empty cells blank
}

// renderCommand draws the board as text or a Graphviz diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a board as text, DOT, SVG or PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.format == "" {
				opts.format = formatFromOutput(opts.output)
			}
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			if opts.format == formatPNG && opts.output == "" {
				return fmt.Errorf("png output needs --output")
			}
			return c.withService(cmd.Context(), func(svc *dashboard.Service) error {
				res, err := svc.Layout(cmd.Context(), c.cfg.Board)
				if err != nil {
					return err
				}
				if opts.title == "" {
					opts.title = c.cfg.Board
				}
				return c.runRender(cmd, res, &opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: text, dot, svg, png (default from --output, else text)")
	cmd.Flags().StringVar(&opts.title, "title", "", "diagram title (default board id)")
	cmd.Flags().IntVar(&opts.cellSize, "cell-size", 72, "cell size in points for diagrams")
	cmd.Flags().IntVar(&opts.cellWidth, "cell-width", 8, "cell width in characters for text")
	cmd.Flags().BoolVar(&opts.kinds, "kinds", false, "show tile kinds in text output")
	cmd.Flags().BoolVar(&opts.hidePlaceholders, "hide-placeholders", false, "leave empty cells blank in diagrams")

	return cmd
}

// formatFromOutput infers the format from the output file extension.
func formatFromOutput(output string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	switch ext {
	case "txt", "":
		return formatText
	case "gv":
		return formatDOT
	default:
		return ext
	}
}

// validateFormat checks that the format is supported.
func validateFormat(f string) error {
	if !validFormats[f] {
		return fmt.Errorf("invalid format: %s (must be 'text', 'dot', 'svg', or 'png')", f)
	}
	return nil
}

func (c *CLI) runRender(cmd *cobra.Command, res layout.Result, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := renderLayout(ctx, res, opts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	prog.done("Rendered " + opts.format)
	printFile(opts.output)
	return nil
}

// renderLayout produces the bytes of res in opts.format.
func renderLayout(ctx context.Context, res layout.Result, opts *renderOpts) ([]byte, error) {
	if opts.format == formatText {
		return []byte(render.Text(res, render.TextOptions{CellWidth: opts.cellWidth, ShowKind: opts.kinds})), nil
	}

	dot := render.ToDOT(res, render.DOTOptions{
		Title:            opts.title,
		CellSize:         opts.cellSize,
		HidePlaceholders: opts.hidePlaceholders,
	})
	switch opts.format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return withSpinner(ctx, true, "Running graphviz...", func() ([]byte, error) {
			return render.RenderSVG(ctx, dot)
		})
	case formatPNG:
		return withSpinner(ctx, true, "Running graphviz...", func() ([]byte, error) {
			return render.RenderPNG(ctx, dot)
		})
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.format)
	}
}
