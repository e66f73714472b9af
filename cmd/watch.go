package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashplan/internal/advisor"
	"github.com/theirongolddev/cashplan/internal/daemon"
	"github.com/theirongolddev/cashplan/internal/publish"
)

var (
	flagWatchInterval time.Duration
	flagWatchAddr     string
	flagWatchPublish  bool
	flagWatchRecord   bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the advisory periodically and serve it over HTTP",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagWatchInterval, "interval", 15*time.Minute, "Time between advisory runs")
	watchCmd.Flags().StringVar(&flagWatchAddr, "addr", "127.0.0.1:8787", "HTTP listen address")
	watchCmd.Flags().BoolVar(&flagWatchPublish, "publish", false, "Publish to AMQP whenever the advice changes")
	watchCmd.Flags().BoolVar(&flagWatchRecord, "record", false, "Record a snapshot on every run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	cfg, settings, ledger, err := loadSettings(logger)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	var sink daemon.Sink
	if flagWatchPublish {
		p, err := publish.Dial(cfg.Publish.AMQPURL, cfg.Publish.Exchange, cfg.Publish.RoutingKey, logger)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()
		sink = p
	}

	run := func(ctx context.Context) (*advisor.Result, error) {
		res, err := advisor.Run(ctx, settings, advisor.Deps{Ledger: ledger, History: ledger, Log: logger})
		if err != nil {
			return nil, err
		}
		if flagWatchRecord {
			if err := advisor.Record(ctx, ledger, res); err != nil {
				return nil, err
			}
		}
		return res, nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "  Serving advice on http://%s (Ctrl-C to stop)\n", flagWatchAddr)
	svc := daemon.New(daemon.Config{Interval: flagWatchInterval, Addr: flagWatchAddr}, run, sink, logger)
	return svc.Run(ctx)
}
