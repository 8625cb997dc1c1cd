package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/roadmapper/internal/external"
	"github.com/abhisek/roadmapper/internal/status"
	"github.com/abhisek/roadmapper/internal/syncstatus"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize progress, what to do next and the sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		s := e.shell.Stats()
		fmt.Fprintf(out, "%s  %.0f%% complete (%d of %d items)\n",
			progressBar(s.Percent, 24), s.Percent, s.Completed, s.Total)

		counts := []string{
			fmt.Sprintf("%s %d in progress", status.InProgress.Icon(), s.InProgress),
			fmt.Sprintf("%s %d to do", status.Todo.Icon(), s.Todo),
			fmt.Sprintf("%s %d locked", status.Locked.Icon(), s.Locked),
		}
		if s.NeedsReview > 0 {
			counts = append(counts, fmt.Sprintf("%s %d to review", status.NeedsReview.Icon(), s.NeedsReview))
		}
		if s.Broken > 0 {
			counts = append(counts, fmt.Sprintf("%s %d broken", status.Broken.Icon(), s.Broken))
		}
		fmt.Fprintln(out, strings.Join(counts, "   "))

		if next := e.shell.Next(5); len(next) > 0 {
			fmt.Fprintln(out, "\nUp next:")
			for _, c := range next {
				fmt.Fprintf(out, "  %-28s  %3.0f%%  %s\n", truncate(c.ID, 28), c.Progress, c.Label)
			}
		}

		sc := e.sync()
		if !sc.Enabled() {
			return nil
		}
		fmt.Fprintln(out)
		st, err := sc.Fetch(cmd.Context())
		switch {
		case errors.Is(err, syncstatus.ErrDisabled):
		case external.Is(err):
			fmt.Fprintf(out, "Sync: unavailable (%v)\n", err)
		case err != nil:
			return err
		default:
			fmt.Fprintf(out, "Sync: %s · %s  %s %.0f%%\n", st.Status, st.ActiveModel, progressBar(st.Progress, 12), st.Progress)
		}
		return nil
	},
}

func progressBar(percent float64, cells int) string {
	filled := int(percent / 100 * float64(cells))
	filled = max(0, min(filled, cells))
	return strings.Repeat("█", filled) + strings.Repeat("░", cells-filled)
}
