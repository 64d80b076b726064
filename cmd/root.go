package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/certguru/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "certguru",
	Short: "Adaptive flashcard trainer for certification exams",
	Long: "certguru serves multiple-choice exam questions, tracks a mastery score per question " +
		"and favours the questions you get wrong. Run it without a subcommand to start the terminal trainer.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrain(cmd, trainFlags{})
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CERTGURU_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ./certguru.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file / CERTGURU_STORE_SQLITE_PATH, then CERTGURU_DB and the
// default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
