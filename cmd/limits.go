package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashplan/internal/advisor"
	"github.com/theirongolddev/cashplan/internal/cli"
	"github.com/theirongolddev/cashplan/internal/limits"
	"github.com/theirongolddev/cashplan/internal/pipeline"
	"github.com/theirongolddev/cashplan/internal/store"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Monthly outflow used per card against its bank limit",
	RunE:  runLimits,
}

func init() {
	rootCmd.AddCommand(limitsCmd)
}

// classifyMonth reads this month's usage and classifies it.
func classifyMonth(ctx context.Context, s advisor.Settings, ledger *store.Ledger, logger zerolog.Logger) (pipeline.Window, pipeline.Collection, limits.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	window := pipeline.MonthWindow(time.Now(), s.Location)
	col, err := pipeline.NewAggregator(ledger, logger).Collect(ctx, window, s.Filter())
	if err != nil {
		return window, col, limits.Result{}, err
	}
	return window, col, limits.Classify(col.Usage, s.Policy()), nil
}

func runLimits(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	_, settings, ledger, err := loadSettings(logger)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	window, _, res, err := classifyMonth(cmd.Context(), settings, ledger, logger)
	if err != nil {
		return err
	}
	if len(res.Cards) == 0 {
		fmt.Println("\n  No assessable cards this month.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("MONTHLY LIMITS  " + window.Start.Format("January 2006")))
	fmt.Println()

	rows := make([][]string, 0, len(res.Cards)+2)
	for _, c := range res.Cards {
		pct := ""
		if c.Cap.IsPositive() {
			pct = cli.FormatPercent(c.UsedOut.Div(c.Cap).InexactFloat64())
		}
		rows = append(rows, []string{
			c.Status.Glyph() + " " + c.Bank() + " " + c.Card.Masked,
			cli.FormatAmount(c.UsedOut),
			cli.FormatAmount(c.Cap),
			cli.RenderUsageBar(c.UsedOut, c.Cap, 12),
			pct,
			cli.FormatAmount(c.Balance),
			cli.FormatAmount(c.Remaining),
			cli.FormatAmount(c.DepositCap),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", "", "", "", "", "", cli.FormatAmount(res.Totals.Remaining), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Cards (" + settings.LocalCurrency + ")",
		Headers: []string{"Card", "Used", "Cap", "", "%", "Balance", "Remaining", "Deposit cap"},
		Rows:    rows,
	}))
	fmt.Println()
	fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d blocked · %d extendable", res.Totals.Blocked, res.Totals.Extendable)))
	return nil
}
