package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/starchart/internal/cache"
	"github.com/papapumpkin/starchart/internal/config"
	"github.com/papapumpkin/starchart/internal/journal"
	"github.com/papapumpkin/starchart/internal/ledger"
	"github.com/papapumpkin/starchart/internal/metrics"
	"github.com/papapumpkin/starchart/internal/route"
	"github.com/papapumpkin/starchart/internal/telemetry"
	"github.com/papapumpkin/starchart/internal/tui"
	"github.com/papapumpkin/starchart/internal/ui"
)

// lookupTimeout bounds the cache query behind the cached badge.
const lookupTimeout = 2 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail the journal and show the live dashboard",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	addWatchFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

// addWatchFlags registers the dashboard flags. The root command runs the
// dashboard too, so it carries the same flags.
func addWatchFlags(c *cobra.Command) {
	c.Flags().String("journal", "", "journal file to follow (default: newest in journal_dir)")
	c.Flags().Bool("no-cache", false, "do not store visited systems")
	c.Flags().String("view", "", "initial body view: detailed, compact or table")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	printer := ui.NewTo(cmd.ErrOrStderr())

	cfg, err := config.Load()
	if err != nil {
		printer.Error(err.Error())
		return err
	}
	if v, _ := cmd.Flags().GetString("view"); v != "" {
		cfg.DefaultView = v
		if err := cfg.Validate(); err != nil {
			printer.Error(err.Error())
			return err
		}
	}

	path, err := resolveJournal(cmd, cfg)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	tel, err := openTelemetry(cfg)
	if err != nil {
		printer.Warn(err.Error())
	}
	defer tel.Close()
	tel.Record(telemetry.KindSessionStart, "", map[string]string{"journal": path})

	reg := prometheus.NewRegistry()
	col := metrics.NewCollector(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// prog is assigned after bootstrap; callbacks fired before that only
	// update the ledger.
	var prog *tui.Program
	send := func(msg any) {
		if prog != nil {
			prog.Send(msg)
		}
	}

	opts := []ledger.Option{ledger.WithRouter(&route.Tracker{
		Fs:           afero.NewOsFs(),
		StatusPath:   cfg.StatusPath(),
		NavRoutePath: cfg.NavRoutePath(),
	})}

	var store *cache.Cache
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		store, err = cache.New(ctx, cfg.CachePath, cfg.ValueThreshold)
		if err != nil {
			printer.Warn(fmt.Sprintf("cache disabled: %v", err))
		} else {
			defer store.Close()
			opts = append(opts, ledger.WithArchiver(&cache.Archiver{
				Cache:     store,
				Telemetry: tel,
				Metrics:   col,
				OnStored: func(sys ledger.System) {
					send(tui.MsgSystemStored{Name: sys.Name, Address: sys.Address, TotalValue: sys.TotalValue})
				},
			}))
		}
	}

	l := ledger.New(opts...)
	sess := journal.NewSession(l)
	sess.Metrics = col
	sess.Telemetry = tel
	sess.SettleDelay = cfg.JumpSettleDelay

	offset, err := journal.Bootstrap(path, sess)
	if err != nil {
		printer.Error(err.Error())
		return err
	}

	prog = tui.NewProgram(l, tui.Options{
		View:   tui.ParseView(cfg.DefaultView),
		Cached: cachedLookup(store),
	})
	sess.OnChange = func() { send(tui.MsgLedgerChanged{}) }

	tailer := journal.NewTailer(path)
	tailer.Offset = offset
	tailer.PollInterval = cfg.PollInterval
	tail := startTail(ctx, sess, tailer, func(err error) {
		send(tui.MsgTailStopped{Err: err})
	})

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				tel.Record(telemetry.KindMetricsStopped, "", map[string]string{"error": err.Error()})
			}
		}()
	}

	runErr := tui.Run(prog)

	shutdown(tail, sess, l)
	cancel()
	st := sess.Stats()
	tel.Record(telemetry.KindSessionEnd, "", map[string]int{
		"lines":   st.Lines,
		"applied": st.Applied,
		"systems": l.SystemCount(),
	})

	if runErr != nil {
		return runErr
	}
	if cfg.Verbose {
		snap := l.Snapshot()
		printer.SessionSummary(snap)
		printer.Stats(st)
	}
	return nil
}

// tailLoop runs a session's tail on its own goroutine.
type tailLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// startTail feeds tailer into sess until ctx is cancelled or stop is called.
// onErr receives the error that ended the tail, if any.
func startTail(ctx context.Context, sess *journal.Session, tailer *journal.Tailer, onErr func(error)) *tailLoop {
	ctx, cancel := context.WithCancel(ctx)
	tl := &tailLoop{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(tl.done)
		if err := sess.Run(ctx, tailer); err != nil && onErr != nil {
			onErr(err)
		}
	}()
	return tl
}

// stop cancels the tail and waits for the line in flight to be applied.
func (tl *tailLoop) stop() {
	tl.cancel()
	<-tl.done
}

// shutdown stops the tail before the final flush, so no line is applied
// after it and no archive runs against a closed cache.
func shutdown(tail *tailLoop, sess *journal.Session, l *ledger.Ledger) {
	tail.stop()
	sess.Stop()
	l.Flush()
}

// resolveJournal picks --journal or the newest journal in the configured
// directory.
func resolveJournal(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("journal"); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("journal: %w", err)
		}
		return p, nil
	}
	path, err := journal.Latest(cfg.JournalDir)
	if errors.Is(err, journal.ErrNoJournal) {
		return "", fmt.Errorf("%w (set journal_dir or --journal-dir)", err)
	}
	return path, err
}

// openTelemetry returns nil when telemetry is off. The nil emitter is safe
// to use.
func openTelemetry(cfg config.Config) (*telemetry.Emitter, error) {
	if cfg.TelemetryPath == "" {
		return nil, nil
	}
	return telemetry.NewEmitter(cfg.TelemetryPath)
}

// cachedLookup adapts the cache to the dashboard's cached badge.
func cachedLookup(store *cache.Cache) func(int64) bool {
	if store == nil {
		return nil
	}
	return func(address int64) bool {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		ok, err := store.HasSystem(ctx, address)
		return err == nil && ok
	}
}
