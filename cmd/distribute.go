package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/cashplan/internal/cli"
	"github.com/theirongolddev/cashplan/internal/limits"
	"github.com/theirongolddev/cashplan/internal/log"
	"github.com/theirongolddev/cashplan/internal/model"
)

var flagMode string

var distributeCmd = &cobra.Command{
	Use:   "distribute AMOUNT",
	Short: "Plan where to deposit an amount without breaking bank limits",
	Args:  cobra.ExactArgs(1),
	RunE:  runDistribute,
}

func init() {
	distributeCmd.Flags().StringVarP(&flagMode, "mode", "m", "now", "Distribution mode: now or target (target may use wallets)")
	rootCmd.AddCommand(distributeCmd)
}

func runDistribute(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("amount %q is not a number", args[0])
	}
	mode, err := model.ParseMode(flagMode)
	if err != nil {
		return err
	}

	logger := newLogger()
	_, settings, ledger, err := loadSettings(logger)
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	_, _, res, err := classifyMonth(cmd.Context(), settings, ledger, logger)
	if err != nil {
		return err
	}

	plan := limits.Distribute(amount, res.Cards, settings.BankPreference, mode)
	logger.Debug().
		Str(log.FieldOperation, log.OpDistribute).
		Str(log.FieldMode, plan.Mode.String()).
		Str(log.FieldAmount, plan.Requested.String()).
		Str(log.FieldLeftover, plan.Leftover.String()).
		Msg("distributed")

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DISTRIBUTE  %s  (%s)", cli.FormatMoney(amount, settings.LocalCurrency), plan.Mode)))
	fmt.Println()

	if len(plan.Assignments) == 0 {
		fmt.Println("  No card can take this amount.")
	} else {
		rows := make([][]string, 0, len(plan.Assignments)+2)
		for _, a := range plan.Assignments {
			rows = append(rows, []string{
				a.Status.Glyph() + " " + a.Bank + " " + a.Masked,
				a.Step.String(),
				cli.FormatAmount(a.CapacityBefore),
				cli.FormatAmount(a.Amount),
				cli.FormatAmount(a.CapacityAfter),
			})
		}
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{"TOTAL", "", "", cli.FormatAmount(plan.TotalAssigned), ""})

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Card", "Step", "Room before", "Amount", "Room after"},
			Rows:    rows,
		}))
	}

	if plan.Leftover.IsPositive() {
		fmt.Println()
		fmt.Printf("  No destination for %s\n", cli.FormatMoney(plan.Leftover, settings.LocalCurrency))
	}
	return nil
}
