package llm

import "strings"

// Model is one entry of the model catalog: the provider serving it, the
// short alias accepted in configuration and its list price.
type Model struct {
	Provider string
	Alias    string
	ID       string
	Cost     ModelCost
}

// ModelCost holds per-million-token pricing in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost calculates the total USD cost for the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// catalog lists the models certguru is configured and priced for. Explanations
// and hints are short, so the cheap fast tiers are the defaults; the larger
// tiers are there for regenerating explanations with more depth.
//
// Prices as listed by the vendors in October 2026.
var catalog = []Model{
	{Provider: "gemini", Alias: "gemini-flash", ID: "gemini-2.5-flash", Cost: ModelCost{0.3, 2.5}},
	{Provider: "gemini", Alias: "gemini-flash-lite", ID: "gemini-2.5-flash-lite", Cost: ModelCost{0.1, 0.4}},
	{Provider: "gemini", Alias: "gemini-pro", ID: "gemini-2.5-pro", Cost: ModelCost{1.25, 10}},
	{Provider: "gemini", ID: "gemini-2.0-flash", Cost: ModelCost{0.1, 0.4}},
	{Provider: "gemini", ID: "gemini-1.5-flash", Cost: ModelCost{0.075, 0.3}},

	{Provider: "anthropic", Alias: "claude-haiku", ID: "claude-haiku-4-5-20251001", Cost: ModelCost{1, 5}},
	{Provider: "anthropic", Alias: "claude-sonnet", ID: "claude-sonnet-4-5-20250929", Cost: ModelCost{3, 15}},
	{Provider: "anthropic", ID: "claude-sonnet-4-20250514", Cost: ModelCost{3, 15}},
	{Provider: "anthropic", ID: "claude-3-5-haiku-20241022", Cost: ModelCost{0.8, 4}},

	{Provider: "openai", Alias: "gpt-mini", ID: "gpt-4o-mini", Cost: ModelCost{0.15, 0.6}},
	{Provider: "openai", Alias: "gpt", ID: "gpt-4o", Cost: ModelCost{2.5, 10}},
	{Provider: "openai", ID: "gpt-4.1-mini", Cost: ModelCost{0.4, 1.6}},
	{Provider: "openai", ID: "gpt-5-mini", Cost: ModelCost{0.25, 2}},

	// OpenRouter takes the same aliases as the direct vendors.
	{Provider: "openrouter", Alias: "gemini-flash", ID: "google/gemini-2.5-flash", Cost: ModelCost{0.3, 2.5}},
	{Provider: "openrouter", Alias: "gemini-pro", ID: "google/gemini-2.5-pro", Cost: ModelCost{1.25, 10}},
	{Provider: "openrouter", Alias: "claude-haiku", ID: "anthropic/claude-haiku-4.5", Cost: ModelCost{1, 5}},
	{Provider: "openrouter", Alias: "gpt-mini", ID: "openai/gpt-4o-mini", Cost: ModelCost{0.15, 0.6}},
}

// resolveModel maps a configured alias to the provider's model ID. Unknown
// names pass through so any model ID the vendor accepts can be configured.
func resolveModel(provider, name string) string {
	for _, m := range catalog {
		if m.Provider == provider && m.Alias != "" && m.Alias == name {
			return m.ID
		}
	}
	return name
}

// LookupCost returns the pricing for a model ID, or nil if unknown. Responses
// may report a dated or "models/"-prefixed ID, so the longest catalog ID that
// prefixes the reported one also matches.
func LookupCost(modelID string) *ModelCost {
	id := strings.TrimPrefix(modelID, "models/")
	var best *Model
	for i, m := range catalog {
		if m.ID == id {
			c := m.Cost
			return &c
		}
		if strings.HasPrefix(id, m.ID+"-") && (best == nil || len(m.ID) > len(best.ID)) {
			best = &catalog[i]
		}
	}
	if best == nil {
		return nil
	}
	c := best.Cost
	return &c
}

// Models returns the catalog entries for provider.
func Models(provider string) []Model {
	var out []Model
	for _, m := range catalog {
		if m.Provider == provider {
			out = append(out, m)
		}
	}
	return out
}
