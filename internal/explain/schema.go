package explain

import "github.com/abhisek/certguru/internal/llm"

// ExplanationSchema is the structured output for answer explanations.
var ExplanationSchema = &llm.Schema{
	Name:        "answer-explanation",
	Description: "Concise explanation of the correct answer to a certification exam question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "At most 5 sentences: the correct answer and why, then why the other options are wrong",
			},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}

// HintSchema is the structured output for hints.
var HintSchema = &llm.Schema{
	Name:        "question-hint",
	Description: "A subtle hint that does not reveal the answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"hint": map[string]any{
				"type":        "string",
				"description": "1-2 sentences pointing toward the relevant concept or service",
			},
		},
		"required":             []any{"hint"},
		"additionalProperties": false,
	},
}
