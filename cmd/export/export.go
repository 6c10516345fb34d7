// Package export writes stored months to JSON or CSV files.
package export

import (
	"context"
	"strconv"
	"strings"

	"cfe-etl/cmd/common"
	"cfe-etl/cmd/root"
	"cfe-etl/internal/dateutils"
	"cfe-etl/internal/logging"
	"cfe-etl/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored month to JSON or CSV",
	Long: `Read one month of classified line items from the year table and
write it to a file. The format follows the output extension: .json or .csv.`,
	Run: exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Month, "month", "m", "", "Month name in Spanish (e.g. marzo)")
	Cmd.Flags().IntVarP(&root.Year, "year", "y", 0, "Year (e.g. 2025)")
	_ = Cmd.MarkFlagRequired("month")
	_ = Cmd.MarkFlagRequired("year")
}

func exportFunc(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	log := logging.NewLogrusAdapterFromLogger(root.Log)

	month, err := dateutils.MonthNumber(root.Month)
	if err != nil {
		root.Log.Fatalf("Invalid month: %v", err)
	}

	st, err := common.OpenStore(root.Cfg, log)
	if err != nil {
		root.Log.Fatalf("Error connecting to database: %v", err)
	}

	items, err := st.FetchMonth(ctx, root.Year, month)
	if err != nil {
		root.Log.Fatalf("Error reading month: %v", err)
	}
	root.Log.Infof("Read %d line items for %s %d", len(items), root.Month, root.Year)

	output := root.Output
	if output == "" {
		output = root.Month + "_" + strconv.Itoa(root.Year) + ".json"
	}

	switch {
	case strings.HasSuffix(output, ".csv"):
		err = report.WriteItemsCSV(items, output)
	default:
		err = report.WriteMonthJSON(items, output)
	}
	if err != nil {
		root.Log.Fatalf("Error writing %s: %v", output, err)
	}
	root.Log.Infof("Export written to %s", output)
}
