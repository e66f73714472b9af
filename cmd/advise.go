package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashplan/internal/advisor"
	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/publish"
)

var (
	flagRecord  bool
	flagPublish bool
)

var adviseCmd = &cobra.Command{
	Use:   "advise",
	Short: "Full cash advisory: position, sale plan, limits and destinations",
	RunE:  runAdvise,
}

func init() {
	adviseCmd.Flags().BoolVar(&flagRecord, "record", false, "Save today's position for future comparisons")
	adviseCmd.Flags().BoolVar(&flagPublish, "publish", false, "Send the report to the configured AMQP exchange")
	rootCmd.AddCommand(adviseCmd)
}

func runAdvise(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	cfg, settings, ledger, err := loadSettings(logger)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := advisor.Run(ctx, settings, advisor.Deps{
		Ledger:  ledger,
		History: ledger,
		Log:     logger,
	})
	if err != nil {
		return err
	}

	for i, s := range res.Sections {
		if i > 0 {
			fmt.Println()
		}
		fmt.Println(s)
	}
	if res.Rejected > 0 {
		logger.Warn().Int(log.FieldRows, res.Rejected).Msg("some ledger rows were skipped; run with --verbose for details")
	}

	if flagRecord {
		if err := advisor.Record(ctx, ledger, res); err != nil {
			return err
		}
	}

	if flagPublish {
		p, err := publish.Dial(cfg.Publish.AMQPURL, cfg.Publish.Exchange, cfg.Publish.RoutingKey, logger)
		if err != nil {
			return err
		}
		defer func() { _ = p.Close() }()

		return p.PublishAdvice(ctx, publish.AdviceMessage{
			RunID:       res.RunID,
			GeneratedAt: res.GeneratedAt,
			Sections:    res.Sections,
		})
	}
	return nil
}
