package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/starchart/internal/cache"
	"github.com/papapumpkin/starchart/internal/config"
	"github.com/papapumpkin/starchart/internal/journal"
	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/ui"
)

var replayCmd = &cobra.Command{
	Use:   "replay <journal>",
	Short: "Process a whole journal file offline and print the session",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplay,
}

func init() {
	replayCmd.Flags().Bool("store", false, "store valuable systems in the cache")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	printer := ui.NewTo(cmd.ErrOrStderr())

	cfg, err := config.Load()
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		printer.Error(err.Error())
		return fmt.Errorf("replay: %w", err)
	}
	defer f.Close()

	var opts []ledger.Option
	stored := 0
	if store, _ := cmd.Flags().GetBool("store"); store {
		c, err := cache.New(cmd.Context(), cfg.CachePath, cfg.ValueThreshold)
		if err != nil {
			printer.Error(err.Error())
			return err
		}
		defer c.Close()
		opts = append(opts, ledger.WithArchiver(&cache.Archiver{
			Cache:    c,
			OnStored: func(ledger.System) { stored++ },
		}))
	}

	l := ledger.New(opts...)
	sess := journal.NewSession(l)
	sess.SettleDelay = 0

	if err := journal.Replay(f, sess); err != nil {
		printer.Error(err.Error())
		return err
	}
	l.Flush()

	printer.SessionSummary(l.Snapshot())
	printer.Stats(sess.Stats())
	if stored > 0 {
		printer.Success(fmt.Sprintf("stored %d system(s) in %s", stored, cfg.CachePath))
	}
	return nil
}
