package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/starchart/internal/config"
	"github.com/papapumpkin/starchart/internal/journal"
	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/route"
	"github.com/papapumpkin/starchart/internal/ui"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Print the plotted route from Status.json and NavRoute.json",
	Args:  cobra.NoArgs,
	RunE:  runRoute,
}

func init() {
	routeCmd.Flags().String("journal", "", "journal file to read the current system from")
	rootCmd.AddCommand(routeCmd)
}

// runRoute locates the current system from the journal, then reads the
// snapshot files the same way the dashboard does.
func runRoute(cmd *cobra.Command, _ []string) error {
	printer := ui.NewTo(cmd.ErrOrStderr())

	cfg, err := config.Load()
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	path, err := resolveJournal(cmd, cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	l := ledger.New(ledger.WithRouter(&route.Tracker{
		Fs:           afero.NewOsFs(),
		StatusPath:   cfg.StatusPath(),
		NavRoutePath: cfg.NavRoutePath(),
	}))
	sess := journal.NewSession(l)
	sess.SettleDelay = 0
	if _, err := journal.Bootstrap(path, sess); err != nil {
		printer.Error(err.Error())
		return err
	}

	snap := l.Snapshot()
	if snap.Current == nil {
		printer.Warn("no arrival in " + path)
		return nil
	}
	printer.RouteProgress(snap.Current.Name, snap.Route)
	return nil
}
