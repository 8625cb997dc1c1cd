package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/roadmapper/internal/app"
)

// runApp builds the dashboard dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd, envOptions{tui: true})
	if err != nil {
		return err
	}
	defer e.Close()

	return app.Run(app.Options{
		Shell:     e.shell,
		Assistant: e.assistant(),
		Sync:      e.sync(),
		Logger:    e.logger.Named("tui"),
	})
}
