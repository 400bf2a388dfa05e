// Package cli implements the traceloom command-line interface.
//
// This package provides commands for probing instrumented HTTP endpoints,
// tailing the live event stream, serving the query API, reporting stored
// events, and rendering trace graphs. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - probe: Issue instrumented HTTP requests and summarize the emitted events
//   - watch: Tail the Redis event stream in a live terminal view
//   - serve: Run the HTTP query API backed by the Mongo event store
//   - report: Print recent errors and spans from the event store
//   - render: Render a stored trace as an SVG, PNG, or DOT graph
//   - spool: Manage the on-disk event spool
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/traceloom/traceloom/pkg/buildinfo"
)

// appName is the application name used for directories and display.
const appName = "traceloom"

// Execute runs the traceloom CLI and returns an error if any command fails.
//
// The function sets up the root command with all subcommands, configures
// logging based on the --verbose flag, and executes the command tree. The
// logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool
	var configPath string

	root := &cobra.Command{
		Use:          appName,
		Short:        "Traceloom instruments client calls and records their traces",
		Long:         `Traceloom wraps HTTP clients and method invokers with monitoring integrations that emit spans, breadcrumbs, and error events, and provides tooling to stream, store, query, and render the recorded traces.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")

	root.AddCommand(newProbeCmd(&configPath))
	root.AddCommand(newWatchCmd(&configPath))
	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newReportCmd(&configPath))
	root.AddCommand(newRenderCmd(&configPath))
	root.AddCommand(newSpoolCmd(&configPath))
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
