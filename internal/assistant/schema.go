package assistant

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/abhisek/roadmapper/internal/llm"
)

// suggestionSchema constrains the model to pick one of ids. The schema name
// carries a hash of the candidates because compiled schemas are cached by
// name.
func suggestionSchema(ids []string) *llm.Schema {
	h := fnv.New32a()
	h.Write([]byte(strings.Join(ids, "\x00")))

	enum := make([]any, len(ids))
	for i, id := range ids {
		enum[i] = id
	}
	return &llm.Schema{
		Name:        fmt.Sprintf("next-item-%08x", h.Sum32()),
		Description: "The roadmap item the learner should study next",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"item_id": map[string]any{
					"type":        "string",
					"description": "Id of the chosen item, copied exactly from the candidate list",
					"enum":        enum,
				},
				"reason": map[string]any{
					"type":        "string",
					"description": "One or two sentences on why this item comes next",
				},
			},
			"required":             []any{"item_id", "reason"},
			"additionalProperties": false,
		},
	}
}
