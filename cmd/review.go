package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/roadmapper/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Spaced review of completed items",
}

var reviewDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List completed items that are due for review",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		due := e.reviews.Due()
		if len(due) == 0 {
			fmt.Fprintln(out, "Nothing due for review.")
			return nil
		}

		now := e.reviews.Now()
		for _, id := range due {
			rs := e.reviews.State(id)
			label := id
			if it, err := e.graph.Item(id); err == nil {
				label = it.Label
			}
			tag := ""
			if rs.Status(now) == review.Overdue {
				tag = "  overdue"
			}
			fmt.Fprintf(out, "%-28s  stage %d  %4.1f days late%s  %s\n",
				truncate(id, 28), rs.Stage, rs.Late(now).Hours()/24, tag, label)
		}
		return nil
	},
}

var reviewDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Record a review and schedule the next one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		it, err := requireItem(e.graph, args[0])
		if err != nil {
			return err
		}
		if err := e.reviews.MarkReviewed(cmd.Context(), it.ID); err != nil {
			return err
		}
		rs := e.reviews.State(it.ID)
		msg := fmt.Sprintf("next review %s", rs.NextReviewDate.Local().Format("Mon Jan 2"))
		if rs.Graduated {
			msg += " (graduated)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s reviewed, %s\n", it.Label, msg)
		return nil
	},
}

func init() {
	reviewCmd.AddCommand(reviewDueCmd)
	reviewCmd.AddCommand(reviewDoneCmd)
}
