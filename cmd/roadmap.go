package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"charm.land/lipgloss/v2/tree"
	"github.com/spf13/cobra"

	"github.com/abhisek/roadmapper/internal/roadmap"
	"github.com/abhisek/roadmapper/internal/status"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Inspect the roadmap",
}

var roadmapListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items in prerequisite order with their status",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		only, _ := cmd.Flags().GetString("status")
		proj := e.shell.Projection()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%-28s  %-10s  %-13s  %5s  %s\n", "ID", "Type", "Status", "Pct", "Label")
		fmt.Fprintln(out, strings.Repeat("─", 90))
		for _, it := range e.graph.Items() {
			st := proj.Status(it.ID)
			if only != "" && string(st) != only {
				continue
			}
			fmt.Fprintf(out, "%-28s  %-10s  %s %-11s  %4.0f%%  %s\n",
				truncate(it.ID, 28), it.NodeType.DisplayName(), st.Icon(), st.Label(),
				e.progress.Get(it.ID), it.Label)
		}
		return nil
	},
}

var roadmapTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the containment tree with status icons",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		proj := e.shell.Projection()
		label := func(it roadmap.Item) string {
			st := proj.Status(it.ID)
			return fmt.Sprintf("%s %s (%.0f%%)", st.Icon(), it.Label, e.progress.Get(it.ID))
		}

		var build func(it roadmap.Item, path map[string]bool) *tree.Tree
		build = func(it roadmap.Item, path map[string]bool) *tree.Tree {
			t := tree.Root(label(it))
			path[it.ID] = true
			defer delete(path, it.ID)
			for _, c := range e.graph.Children(it.ID) {
				if path[c.ID] {
					continue
				}
				if c.HasChildren() {
					t.Child(build(c, path))
				} else {
					t.Child(label(c))
				}
			}
			return t
		}

		out := cmd.OutOrStdout()
		for _, r := range e.graph.Roots() {
			fmt.Fprintln(out, build(r, map[string]bool{}).String())
		}
		return nil
	},
}

// errIntegrity makes `roadmap check` exit non-zero.
var errIntegrity = errors.New("roadmap has integrity problems")

var roadmapCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate references and prerequisite cycles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			if cfg.Roadmap.Path == "" {
				return errors.New("--watch needs a roadmap file (--roadmap or roadmap.path)")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", cfg.Roadmap.Path)
			return roadmap.Watch(ctx, cfg.Roadmap.Path, func(g *roadmap.Graph, err error) {
				fmt.Fprintln(out, strings.Repeat("─", 60))
				if err != nil {
					fmt.Fprintln(out, "✗", err)
					return
				}
				printIntegrity(out, g)
			})
		}

		g, err := loadRoadmap(cfg)
		if err != nil {
			return err
		}
		if !printIntegrity(out, g) {
			return errIntegrity
		}
		return nil
	},
}

// printIntegrity reports problems and returns whether the roadmap is clean.
func printIntegrity(w io.Writer, g *roadmap.Graph) bool {
	r := g.Integrity()
	if r.OK() {
		fmt.Fprintf(w, "✓ %d items, no problems\n", g.Len())
		return true
	}
	fmt.Fprintf(w, "✗ %d items, %d problems\n", g.Len(), len(r.Problems))
	for _, p := range r.Problems {
		fmt.Fprintf(w, "  %s %s\n", status.Broken.Icon(), p.Error())
	}
	return false
}

func init() {
	roadmapListCmd.Flags().StringP("status", "s", "", "Only show items with this status (e.g. inProgress, todo, locked)")
	roadmapCheckCmd.Flags().BoolP("watch", "w", false, "Re-check whenever the roadmap file changes")

	roadmapCmd.AddCommand(roadmapListCmd)
	roadmapCmd.AddCommand(roadmapTreeCmd)
	roadmapCmd.AddCommand(roadmapCheckCmd)
}
