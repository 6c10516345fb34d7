// Package classify runs the full ingestion pipeline.
package classify

import (
	"context"

	"cfe-etl/cmd/common"
	"cfe-etl/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Parse, classify and persist CFE line items",
	Long: `Run the full ingestion pipeline on a directory of CFE XML files:
parse every document, classify each line item first against the verified
history and then with the completion model, and persist the result to the
year table.`,
	Run: classifyFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Dir, "dir", "d", "", "Directory with CFE XML files")
	Cmd.Flags().IntSliceVarP(&root.HistoryYears, "history-years", "y", nil, "Year tables to match against (e.g. 2024,2025)")
	_ = Cmd.MarkFlagRequired("dir")
}

func classifyFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	runner, closer, err := common.NewRunner(ctx, root.Cfg, root.Log)
	if err != nil {
		root.Log.Fatalf("Error wiring pipeline: %v", err)
	}
	defer closer()

	if err := runner.ClassifyAndLoad(ctx, root.Dir, root.HistoryYears); err != nil {
		root.Log.Fatalf("Ingestion failed: %v", err)
	}
	root.Log.Info("Ingestion completed successfully!")
}
