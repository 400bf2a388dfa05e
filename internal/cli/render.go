package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/render"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"
)

// newRenderCmd creates the render command. It loads all spans of a
// stored trace, assembles them into a span tree, and renders the tree
// as a Graphviz graph.
func newRenderCmd(configPath *string) *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:   "render TRACE_ID",
		Short: "Render a stored trace as a graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			traceID := args[0]

			format = strings.ToLower(format)
			if format != formatSVG && format != formatPNG && format != formatDOT {
				return errors.New(errors.ErrCodeInvalidFormat,
					"unsupported format %q (want svg, png, or dot)", format)
			}
			if output == "" {
				output = fmt.Sprintf("trace-%s.%s", traceID, format)
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			prog := newProgress(logger)
			spans, err := store.TraceSpans(ctx, traceID)
			if err != nil {
				return err
			}

			tree := render.BuildTree(traceID, spans)
			dot := render.ToDOT(tree)

			var data []byte
			switch format {
			case formatSVG:
				data, err = render.RenderSVG(ctx, dot)
			case formatPNG:
				data, err = render.RenderPNG(ctx, dot)
			case formatDOT:
				data = []byte(dot)
			}
			if err != nil {
				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			prog.done(fmt.Sprintf("Rendered %d spans", tree.SpanCount()))
			printSuccess("Trace %s rendered", traceID)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default trace-<id>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg, png, or dot")

	return cmd
}
