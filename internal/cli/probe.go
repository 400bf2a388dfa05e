package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/traceloom/traceloom/pkg/errors"
	"github.com/traceloom/traceloom/pkg/httputil"
	"github.com/traceloom/traceloom/pkg/intercept"
)

// probeResult is the outcome of one probed URL.
type probeResult struct {
	url      string
	duration time.Duration
	err      error
}

// newProbeCmd creates the probe command. It issues instrumented GET
// requests against the given URLs; every request flows through the
// configured integrations, so matching spans, breadcrumbs, and error
// events land in the configured sinks.
func newProbeCmd(configPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "probe URL [URL...]",
		Short: "Issue instrumented HTTP requests and report the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			for _, raw := range args {
				if err := errors.ValidateURL(raw); err != nil {
					return err
				}
			}

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			emitter, err := buildSink(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer emitter.Close()

			reg, err := cfg.BuildRegistry(emitter)
			if err != nil {
				return err
			}
			client := httputil.NewClient(reg, nil)

			// All probes in one invocation share a trace.
			ctx, traceID := intercept.NewTrace(ctx)
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			prog := newProgress(logger)
			results := make([]probeResult, 0, len(args))
			for _, url := range args {
				spinner := newCallSpinner(ctx, http.MethodGet, url)
				spinner.Start()

				_, err := client.GetText(ctx, url)
				elapsed := spinner.Done(err)

				results = append(results, probeResult{url: url, duration: elapsed, err: err})
			}
			prog.done(fmt.Sprintf("Probed %d endpoints", len(args)))

			printNewline()
			fmt.Println(probeTable(results))
			printNewline()
			printKeyValue("trace", traceID)
			printNextSteps(traceID)

			if failed := failedCount(results); failed > 0 {
				return errors.New(errors.ErrCodeNetwork, "%d of %d probes failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall deadline for all probes (e.g. 30s)")

	return cmd
}

// probeTable renders the per-URL results as a bordered table.
func probeTable(results []probeResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = errors.UserMessage(r.err)
		}
		rows = append(rows, []string{r.url, r.duration.Round(time.Millisecond).String(), status})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("URL", "Duration", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 2 {
				if strings.HasPrefix(rows[row][2], "ok") {
					return StyleSuccess
				}
				return StyleError
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func failedCount(results []probeResult) int {
	n := 0
	for _, r := range results {
		if r.err != nil {
			n++
		}
	}
	return n
}

func printNextSteps(traceID string) {
	printDetail("inspect the trace: %s render %s -o trace.svg", appName, traceID)
	printDetail("follow the stream: %s watch", appName)
}
