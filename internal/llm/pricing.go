package llm

import (
	"regexp"
	"strings"
)

// ModelCost holds per-million-token pricing for a model in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// datedSuffix matches snapshot suffixes such as -20251001 or -2024-07-18.
var datedSuffix = regexp.MustCompile(`-\d{4}-?\d{2}-?\d{2}$`)

// LookupCost returns the pricing for a model ID, or nil if unknown. Dated
// snapshots fall back to their undated family, and OpenRouter's vendor
// prefix is tried with and without.
func LookupCost(modelID string) *ModelCost {
	candidates := []string{modelID, datedSuffix.ReplaceAllString(modelID, "")}
	if _, bare, ok := strings.Cut(modelID, "/"); ok {
		candidates = append(candidates, bare, datedSuffix.ReplaceAllString(bare, ""))
	}
	for _, id := range candidates {
		if c, ok := modelCosts[id]; ok {
			return &c
		}
	}
	return nil
}

// modelCosts covers the default classifier models and the usual upgrades.
// Last updated: 2026-02-15.
var modelCosts = map[string]ModelCost{
	// Anthropic
	"claude-3-5-haiku": {0.8, 4},
	"claude-haiku-4-5": {1, 5},
	"claude-sonnet-4":  {3, 15},

	// OpenAI
	"gpt-4o":       {2.5, 10},
	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1-nano": {0.1, 0.4},

	// Google
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.5-flash":      {0.3, 2.5},

	// OpenRouter free tier
	"google/gemini-2.0-flash-exp": {0, 0},
}
