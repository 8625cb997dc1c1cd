package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/status"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Read and change per-item progress",
}

// requireItem rejects ids that are not in the roadmap.
func requireItem(g *roadmap.Graph, id string) (roadmap.Item, error) {
	it, err := g.Item(id)
	if err != nil {
		return roadmap.Item{}, fmt.Errorf("%w (see `roadmapper roadmap list`)", err)
	}
	return it, nil
}

var progressGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show progress and status for an item",
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
		st := e.shell.Projection().Status(it.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %.0f%%  %s %s\n", it.Label, e.progress.Get(it.ID), st.Icon(), st.Label())
		return nil
	},
}

// parseProgress accepts a number, optionally suffixed with %, or "done".
func parseProgress(s string) (float64, error) {
	if strings.EqualFold(s, "done") {
		return status.CompleteAt, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid progress %q: want a number from 0 to 100 or \"done\"", s)
	}
	return v, nil
}

var progressSetCmd = &cobra.Command{
	Use:   "set <id> <value>",
	Short: "Set progress for an item (0-100, or \"done\")",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := parseProgress(args[1])
		if err != nil {
			return err
		}

		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		it, err := requireItem(e.graph, args[0])
		if err != nil {
			return err
		}
		// A one-shot command has no session to keep an unsaved value for,
		// so a persistence failure is fatal here.
		if err := e.progress.Set(cmd.Context(), it.ID, v); err != nil {
			return err
		}
		st := e.shell.Projection().Status(it.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s → %.0f%% (%s)\n", it.Label, e.progress.Get(it.ID), st.Label())
		for _, d := range e.graph.Dependents(it.ID) {
			if ds := e.shell.Projection().Status(d.ID); ds == status.Todo && st == status.Completed {
				fmt.Fprintf(cmd.OutOrStdout(), "  unlocked: %s\n", d.Label)
			}
		}
		return nil
	},
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items with recorded progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		snap := e.progress.Snapshot()
		out := cmd.OutOrStdout()
		if len(snap) == 0 {
			fmt.Fprintln(out, "No progress recorded yet.")
			return nil
		}

		ids := make([]string, 0, len(snap))
		for id := range snap {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		proj := e.shell.Projection()
		for _, id := range ids {
			label := "(not in roadmap)"
			if it, err := e.graph.Item(id); err == nil {
				label = it.Label
			}
			fmt.Fprintf(out, "%-28s  %4.0f%%  %s %-11s  %s\n",
				truncate(id, 28), snap[id], proj.Status(id).Icon(), proj.Status(id).Label(), label)
		}
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset [id]",
	Short: "Reset one item, or all progress with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		if all == (len(args) == 1) {
			return errors.New("give either an item id or --all")
		}

		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		out := cmd.OutOrStdout()
		if all {
			if err := e.progress.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "All progress cleared.")
			return nil
		}

		it, err := requireItem(e.graph, args[0])
		if err != nil {
			return err
		}
		if err := e.progress.Set(cmd.Context(), it.ID, 0); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s reset.\n", it.Label)
		return nil
	},
}

func init() {
	progressResetCmd.Flags().Bool("all", false, "Clear progress for every item")

	progressCmd.AddCommand(progressGetCmd)
	progressCmd.AddCommand(progressSetCmd)
	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressResetCmd)
}
