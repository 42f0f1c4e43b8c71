package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diewo77/brushwork/internal/services"
)

var payrollUserID uint

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Weekly payroll reports",
}

var payrollGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate this week's payroll report for a user",
	Long: `Generate this week's payroll report for a user from the jobs currently
awaiting payment. A week can only be generated once.

Examples:
  brushwork payroll generate --user-id 1`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if payrollUserID == 0 {
			return errors.New("--user-id is required")
		}
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.payroll.Generate(cmd.Context(), payrollUserID)
		if errors.Is(err, services.ErrReportAlreadyGenerated) {
			logger.Warn("payroll report already generated for this week", zap.Uint("user_id", payrollUserID))
			return err
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\tweek %d/%d\t%d jobs\t%.2f\n", r.ID, r.WeekNumber, r.Year, r.JobCount, r.TotalPayout)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(payrollCmd)
	payrollCmd.AddCommand(payrollGenerateCmd)
	payrollGenerateCmd.Flags().UintVar(&payrollUserID, "user-id", 0, "owner of the report")
}
