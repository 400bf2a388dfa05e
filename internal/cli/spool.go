package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSpoolCmd creates the spool management command.
func newSpoolCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spool",
		Short: "Manage the on-disk event spool",
	}

	cmd.AddCommand(newSpoolListCmd(configPath))
	cmd.AddCommand(newSpoolReplayCmd(configPath))
	cmd.AddCommand(newSpoolClearCmd(configPath))

	return cmd
}

// newSpoolListCmd creates the "spool list" subcommand.
func newSpoolListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List spooled events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			sp, err := openSpool(cfg)
			if err != nil {
				return err
			}

			entries, err := sp.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("Spool is empty")
				printDetail("Directory: %s", sp.Dir())
				return nil
			}

			counts := map[string]int{}
			for _, e := range entries {
				counts[e.Kind]++
			}
			printInfo("%d spooled events", len(entries))
			for kind, n := range counts {
				printDetail("%-12s %d", kind, n)
			}
			printDetail("Directory: %s", sp.Dir())
			return nil
		},
	}
}

// newSpoolReplayCmd creates the "spool replay" subcommand. Replay
// re-emits spooled events into the configured Redis and Mongo sinks
// and clears the spool on success.
func newSpoolReplayCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "replay",
		Short: "Replay spooled events into the configured sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			sp, err := openSpool(cfg)
			if err != nil {
				return err
			}

			// Replay must not spool back into itself.
			replayCfg := *cfg
			replayCfg.Sinks.Spool.Enabled = false
			dst, err := buildSink(ctx, &replayCfg, logger)
			if err != nil {
				return err
			}
			defer dst.Close()

			prog := newProgress(logger)
			n, err := sp.Replay(ctx, dst)
			if err != nil {
				printError("Replayed %d events before failing", n)
				return err
			}
			prog.done(fmt.Sprintf("Replayed %d events", n))
			printSuccess("Spool drained")
			return nil
		},
	}
}

// newSpoolClearCmd creates the "spool clear" subcommand.
func newSpoolClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all spooled events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			sp, err := openSpool(cfg)
			if err != nil {
				return err
			}

			entries, err := sp.List()
			if err != nil {
				return err
			}
			if err := sp.Clear(); err != nil {
				return err
			}
			printSuccess("Cleared %d spooled events", len(entries))
			printDetail("Directory: %s", sp.Dir())
			return nil
		},
	}
}
