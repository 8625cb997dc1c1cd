package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "roadmapper",
	Short: "Track your way through an AI engineering roadmap",
	Long: "roadmapper is a personal learning-roadmap tracker. Run it without a\n" +
		"subcommand for the terminal dashboard, or use `serve` for the browser API.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (overrides ROADMAPPER_CONFIG)")
	pf.String("roadmap", "", "Path to a JSON/JSONC roadmap (default: built-in roadmap)")
	pf.String("backend", "", "Storage backend: file, sqlite, redis or memory")
	pf.String("data-dir", "", "Data directory for the file and sqlite backends")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(roadmapCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
