// Package reconcilecmd compares a stored month against the authority report.
package reconcilecmd

import (
	"context"

	"cfe-etl/cmd/common"
	"cfe-etl/cmd/root"
	"cfe-etl/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the reconcile command
var Cmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a stored month against the tax authority report",
	Long: `Aggregate the stored line items of one month per counterparty,
compare the sums against the converted tax authority report, persist the
per-counterparty verdicts and optionally write them to a CSV.`,
	Run: reconcileFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Month, "month", "m", "", "Month name in Spanish (e.g. marzo)")
	Cmd.Flags().IntVarP(&root.Year, "year", "y", 0, "Year (e.g. 2025)")
	Cmd.Flags().StringVarP(&root.Input, "report", "r", "", "Converted authority report (JSON)")
	Cmd.Flags().StringVarP(&root.Company, "company", "c", "", "Company name for the target table")
	_ = Cmd.MarkFlagRequired("month")
	_ = Cmd.MarkFlagRequired("year")
	_ = Cmd.MarkFlagRequired("report")
	_ = Cmd.MarkFlagRequired("company")
}

func reconcileFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	runner, err := common.NewReconcileRunner(root.Cfg, root.Log)
	if err != nil {
		root.Log.Fatalf("Error wiring pipeline: %v", err)
	}

	summaries, err := runner.Reconcile(ctx, root.Month, root.Year, root.Input, root.Company)
	if err != nil {
		root.Log.Fatalf("Reconciliation failed: %v", err)
	}
	root.Log.Infof("Reconciled %d counterparties", len(summaries))

	if root.Output == "" {
		return
	}
	if err := report.WriteSummariesCSV(summaries, root.Output); err != nil {
		root.Log.Fatalf("Error writing %s: %v", root.Output, err)
	}
	root.Log.Infof("Summaries written to %s", root.Output)
}
