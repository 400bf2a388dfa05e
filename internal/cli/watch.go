package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/traceloom/traceloom/pkg/event"
	"github.com/traceloom/traceloom/pkg/sink"
)

// watchPoll is how long each stream read blocks before re-polling.
const watchPoll = 2 * time.Second

// newWatchCmd creates the watch command. It tails the Redis event
// stream and shows incoming spans, breadcrumbs, and errors in a live
// terminal view.
func newWatchCmd(configPath *string) *cobra.Command {
	var fromStart bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail the live event stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			rs, err := openRedis(ctx, cfg)
			if err != nil {
				return err
			}
			defer rs.Close()

			lastID := "$" // only new entries
			if fromStart {
				lastID = "0"
			}

			m := newWatchModel(ctx, rs, lastID)
			p := tea.NewProgram(m, tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&fromStart, "from-start", false, "replay the stream from the beginning")

	return cmd
}

// =============================================================================
// WatchModel - Live event stream view
// =============================================================================

// maxWatchRows bounds how many events the view retains.
const maxWatchRows = 500

// watchRow is one rendered event line.
type watchRow struct {
	time        time.Time
	kind        string
	integration string
	detail      string
	failed      bool
}

// eventsMsg delivers a batch of stream entries to the model.
type eventsMsg struct {
	rows   []watchRow
	lastID string
}

// tailErrMsg delivers a stream read failure to the model.
type tailErrMsg struct{ err error }

// watchModel is the bubbletea model for the live stream view.
type watchModel struct {
	ctx    context.Context
	stream *sink.RedisSink
	lastID string
	rows   []watchRow
	height int
	err    error
}

func newWatchModel(ctx context.Context, stream *sink.RedisSink, lastID string) watchModel {
	return watchModel{
		ctx:    ctx,
		stream: stream,
		lastID: lastID,
		height: 20,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tailCmd(m.ctx, m.stream, m.lastID)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	case eventsMsg:
		m.lastID = msg.lastID
		m.rows = append(m.rows, msg.rows...)
		if len(m.rows) > maxWatchRows {
			m.rows = m.rows[len(m.rows)-maxWatchRows:]
		}
		return m, tailCmd(m.ctx, m.stream, m.lastID)
	case tailErrMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Event stream"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.stream.Stream()))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(StyleDim.Render("  waiting for events..."))
		b.WriteString("\n")
		return b.String()
	}

	visible := m.rows
	if len(visible) > m.height {
		visible = visible[len(visible)-m.height:]
	}

	rows := make([][]string, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, []string{
			r.time.Local().Format("15:04:05"),
			r.kind,
			r.integration,
			r.detail,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Time", "Kind", "Integration", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if visible[row].failed {
				return StyleError
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d events]", len(m.rows))))
	return b.String()
}

// tailCmd reads the next batch of stream entries.
func tailCmd(ctx context.Context, stream *sink.RedisSink, lastID string) tea.Cmd {
	return func() tea.Msg {
		events, nextID, err := stream.Tail(ctx, lastID, watchPoll)
		if err != nil {
			if ctx.Err() != nil {
				return tea.Quit()
			}
			return tailErrMsg{err: err}
		}
		rows := make([]watchRow, 0, len(events))
		for _, ev := range events {
			rows = append(rows, rowFromStreamEvent(ev))
		}
		return eventsMsg{rows: rows, lastID: nextID}
	}
}

// rowFromStreamEvent decodes one stream entry into a display row.
// Entries that fail to decode still show up, carrying the raw payload.
func rowFromStreamEvent(ev sink.StreamEvent) watchRow {
	row := watchRow{time: time.Now(), kind: ev.Kind}

	switch ev.Kind {
	case sink.KindSpan:
		var s event.Span
		if err := json.Unmarshal(ev.Data, &s); err == nil {
			row.time = s.Start
			row.integration = s.Integration
			row.detail = fmt.Sprintf("%s %s (%s)", s.Name, event.TruncateString(s.Target), s.Duration.Round(time.Millisecond))
			row.failed = s.Status == event.StatusError
			return row
		}
	case sink.KindBreadcrumb:
		var b event.Breadcrumb
		if err := json.Unmarshal(ev.Data, &b); err == nil {
			row.time = b.Time
			row.integration = b.Integration
			row.detail = event.TruncateString(b.Message)
			return row
		}
	case sink.KindError:
		var e event.ErrorEvent
		if err := json.Unmarshal(ev.Data, &e); err == nil {
			row.time = e.Time
			row.integration = e.Integration
			row.detail = event.TruncateString(e.Message)
			row.failed = true
			return row
		}
	}

	row.detail = event.TruncateString(string(ev.Data))
	return row
}
