// Package root contains the root command for the application
package root

import (
	"cfe-etl/internal/cfeparser"
	"cfe-etl/internal/config"
	"cfe-etl/internal/logging"
	"cfe-etl/internal/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Log is the shared logger instance for commands
	Log = logrus.New()

	// Cfg is the loaded application configuration
	Cfg *config.Config

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "cfe-etl",
		Short: "An ETL tool that ingests CFE invoice XML, classifies expenses and reconciles them against the tax authority report.",
		Long: `cfe-etl ingests electronic invoice (CFE) XML documents, extracts their
line items, assigns an expense category to each one in two stages (first by
matching against already-verified history, then with a completion model for
whatever is left), persists the result per year, and reconciles the stored
months against the tax authority's purchase report.`,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to cfe-etl!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadEnv()

			cfg, err := config.InitializeConfig()
			if err != nil {
				Log.Fatalf("Failed to load configuration: %v", err)
			}
			Cfg = cfg
			Log = config.ConfigureLoggingFromConfig(cfg)

			cfeparser.SetLogger(logging.NewLogrusAdapterFromLogger(Log))
			report.SetDelimiter([]rune(cfg.CSV.Delimiter)[0])
		},
	}

	// Shared flags
	Dir     string
	Month   string
	Year    int
	Company string
	Input   string
	Output  string

	// HistoryYears are the year tables consulted for historical matching
	HistoryYears []int
)

// Init initializes the root command flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&Output, "output", "o", "", "Output file")
}
