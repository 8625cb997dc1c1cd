package assistant

import (
	"fmt"
	"strings"

	"github.com/abhisek/roadmapper/internal/dashboard"
)

const askSystemPrompt = `You are a concise study coach for a self-taught AI engineer working through a learning roadmap.
Answer in Markdown. Prefer short paragraphs and bullet lists. Recommend concrete resources when useful.`

const suggestSystemPrompt = `You are a study coach choosing the next roadmap item for a self-taught AI engineer.
Pick exactly one item from the candidate list. Prefer finishing items already in progress unless a ready item unblocks more of the roadmap.`

func buildSuggestMessage(stats dashboard.Stats, candidates []dashboard.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Roadmap progress: %d of %d items complete (%.0f%%), %d in progress.\n\n",
		stats.Completed, stats.Total, stats.Percent, stats.InProgress)
	b.WriteString("Candidates:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s (%s", c.ID, c.Label, c.Type.DisplayName())
		if c.Difficulty != "" {
			fmt.Fprintf(&b, ", %s", c.Difficulty)
		}
		if c.EstimatedTime != "" {
			fmt.Fprintf(&b, ", ~%s", c.EstimatedTime)
		}
		fmt.Fprintf(&b, ") %.0f%% done\n", c.Progress)
	}
	return b.String()
}
