package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask the assistant a question",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd, envOptions{})
		if err != nil {
			return err
		}
		defer e.Close()

		svc := e.assistant()
		if svc == nil {
			return errors.New("assistant is not configured (check the llm section of your config)")
		}

		out := cmd.OutOrStdout()
		if suggest, _ := cmd.Flags().GetBool("next"); suggest {
			s, err := svc.SuggestNext(cmd.Context(), e.shell)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Next up: %s [%s] (%.0f%% done)\n%s\n", s.Label, s.ItemID, s.Progress, s.Reason)
			return nil
		}

		if len(args) == 0 {
			return errors.New("missing prompt")
		}
		ans, err := svc.Ask(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprintln(out, ans.Text)
			return nil
		}
		rendered, err := glamour.Render(ans.Text, "auto")
		if err != nil {
			rendered = ans.Text
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	askCmd.Flags().Bool("raw", false, "Print the markdown answer without rendering")
	askCmd.Flags().Bool("next", false, "Ask which item to study next instead of a free question")
}
