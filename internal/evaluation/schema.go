package evaluation

import "github.com/abhisek/incidentlab/internal/llm"

// VerdictSchema defines the JSON object the classifier must return.
// Only verdict is required; explanation and matchedConcepts may be absent
// or null and default to empty.
var VerdictSchema = &llm.Schema{
	Name:        "diagnosis-verdict",
	Description: "Judgement of a player's incident diagnosis against the case rubric",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"verdict": map[string]any{
				"type":        "string",
				"description": "One of correct, partial or incorrect",
			},
			"explanation": map[string]any{
				"type":        []any{"string", "null"},
				"description": "One or two sentences of feedback for the player",
			},
			"matchedConcepts": map[string]any{
				"type":        []any{"array", "null"},
				"items":       map[string]any{"type": "string"},
				"description": "Rubric concepts the answer demonstrates",
			},
		},
		"required": []any{"verdict"},
	},
}
