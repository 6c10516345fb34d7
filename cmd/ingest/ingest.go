// Package ingest handles cleaning and parsing of downloaded CFE XML files.
package ingest

import (
	"cfe-etl/cmd/root"
	"cfe-etl/internal/cfeparser"
	"cfe-etl/internal/report"

	"github.com/spf13/cobra"
)

// Cmd represents the ingest command
var Cmd = &cobra.Command{
	Use:   "ingest",
	Short: "Clean and parse CFE XML files without persisting",
	Long: `Clean every CFE XML file in a directory (strip BOM, unwrap the CFE
element, wrap bare fragments) and parse them into line items. The items are
written to a CSV for inspection; nothing touches the database.`,
	Run: ingestFunc,
}

func init() {
	Cmd.Flags().StringVarP(&root.Dir, "dir", "d", "", "Directory with CFE XML files")
	_ = Cmd.MarkFlagRequired("dir")
}

func ingestFunc(cmd *cobra.Command, args []string) {
	root.Log.Infof("Cleaning CFE XML files in %s", root.Dir)

	cleaned, err := cfeparser.CleanDir(root.Dir)
	if err != nil {
		root.Log.Fatalf("Error cleaning XML files: %v", err)
	}
	root.Log.Infof("Cleaned %d files", cleaned)

	items, err := cfeparser.ParseDir(root.Dir)
	if err != nil {
		root.Log.Fatalf("Error parsing XML files: %v", err)
	}
	root.Log.Infof("Extracted %d line items", len(items))

	if root.Output == "" {
		return
	}
	if err := report.WriteItemsCSV(items, root.Output); err != nil {
		root.Log.Fatalf("Error writing %s: %v", root.Output, err)
	}
	root.Log.Infof("Line items written to %s", root.Output)
}
