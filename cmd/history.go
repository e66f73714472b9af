package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashplan/internal/cli"
	"github.com/theirongolddev/cashplan/internal/cushion"
	"github.com/theirongolddev/cashplan/internal/model"
	"github.com/theirongolddev/cashplan/internal/pipeline"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Compare today's cash position with recorded snapshots",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	logger := newLogger()
	_, settings, ledger, err := loadSettings(logger)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	ctx := cmd.Context()
	_, col, _, err := classifyMonth(ctx, settings, ledger, logger)
	if err != nil {
		return err
	}
	cp, err := cushion.Plan(col.Position, settings.CushionParams())
	if err != nil {
		return err
	}

	now := time.Now()
	dayStart, monthStart := pipeline.Horizons(now, settings.Location)
	prevDay, err := ledger.SnapshotBefore(ctx, dayStart)
	if err != nil {
		return err
	}
	prevMonth, err := ledger.SnapshotBefore(ctx, monthStart)
	if err != nil {
		return err
	}

	curr := pipeline.SnapshotOf("", now, cp)
	cmp := pipeline.Compare(curr, prevDay, prevMonth)

	fmt.Println()
	fmt.Println(cli.RenderTitle("CASH POSITION HISTORY"))
	fmt.Println()

	if cmp.Empty() {
		fmt.Println("  No snapshots yet. Run `cashplan advise --record` to start one.")
		return nil
	}

	rows := [][]string{
		{"Now", cli.FormatAmount(curr.Assets), cli.FormatAmount(curr.Liabilities), cli.FormatAmount(curr.Net), cli.FormatAmount(curr.ForeignAvailable)},
		{"---"},
	}
	rows = appendDelta(rows, "vs previous day", cmp.PrevDay)
	rows = appendDelta(rows, "vs previous month", cmp.PrevMonth)

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"", "Assets", "Liabilities", "Net", settings.ForeignCurrency},
		Rows:    rows,
	}))
	return nil
}

func appendDelta(rows [][]string, label string, d *model.Delta) [][]string {
	if d == nil {
		return rows
	}
	return append(rows, []string{
		label + " (" + d.Since.Format("02 Jan") + ")",
		cli.FormatDelta(d.Assets),
		cli.FormatDelta(d.Liabilities),
		cli.FormatDelta(d.Net),
		cli.FormatDelta(d.ForeignAvailable),
	})
}
