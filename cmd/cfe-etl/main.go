// Package main provides the entry point for the cfe-etl CLI application.
package main

import (
	"os"

	"cfe-etl/cmd/classify"
	"cfe-etl/cmd/export"
	"cfe-etl/cmd/ingest"
	"cfe-etl/cmd/reconcilecmd"
	"cfe-etl/cmd/root"
)

func main() {
	root.Init()

	root.Cmd.AddCommand(ingest.Cmd)
	root.Cmd.AddCommand(classify.Cmd)
	root.Cmd.AddCommand(reconcilecmd.Cmd)
	root.Cmd.AddCommand(export.Cmd)

	if err := root.Cmd.Execute(); err != nil {
		root.Log.Error(err)
		os.Exit(1)
	}
}
