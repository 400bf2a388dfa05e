package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/traceloom/traceloom/pkg/event"
)

// newReportCmd creates the report command. It prints the most recent
// error events and spans from the MongoDB event store.
func newReportCmd(configPath *string) *cobra.Command {
	var limit int
	var errorsOnly bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print recent events from the event store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			errs, err := store.RecentErrors(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Println(StyleTitle.Render("Recent errors"))
			if len(errs) == 0 {
				printDetail("none recorded")
			} else {
				fmt.Println(errorTable(errs))
			}

			if errorsOnly {
				return nil
			}

			spans, err := store.RecentSpans(ctx, limit)
			if err != nil {
				return err
			}
			printNewline()
			fmt.Println(StyleTitle.Render("Recent spans"))
			if len(spans) == 0 {
				printDetail("none recorded")
			} else {
				fmt.Println(spanTable(spans))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum events per section")
	cmd.Flags().BoolVar(&errorsOnly, "errors-only", false, "only show error events")

	return cmd
}

func errorTable(errs []event.ErrorEvent) string {
	rows := make([][]string, 0, len(errs))
	for _, e := range errs {
		rows = append(rows, []string{
			e.Time.Local().Format("15:04:05"),
			e.Integration,
			e.Method,
			event.TruncateString(e.Target),
			event.TruncateString(e.Message),
		})
	}
	return eventTable([]string{"Time", "Integration", "Method", "Target", "Message"}, rows, StyleError)
}

func spanTable(spans []event.Span) string {
	rows := make([][]string, 0, len(spans))
	for _, s := range spans {
		rows = append(rows, []string{
			s.Start.Local().Format("15:04:05"),
			s.Integration,
			s.Name,
			event.TruncateString(s.Target),
			s.Duration.Round(time.Millisecond).String(),
			string(s.Status),
		})
	}
	return eventTable([]string{"Time", "Integration", "Name", "Target", "Duration", "Status"}, rows, lipgloss.NewStyle())
}

func eventTable(headers []string, rows [][]string, rowStyle lipgloss.Style) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return rowStyle
		}).
		Render()
}
