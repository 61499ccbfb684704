package llm

import "strings"

// Price is the list price of a model family in USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Estimate returns the USD cost of a call with the given token usage.
func (p Price) Estimate(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*p.Input + float64(outputTokens)*p.Output) / 1e6
}

// priceRule prices every model ID starting with prefix. Rules are
// matched in order, so longer prefixes come first within a family.
type priceRule struct {
	prefix string
	price  Price
}

// priceRules covers the small chat models encouragements are sent to.
// Prices as listed by the vendors in February 2026.
var priceRules = []priceRule{
	{"claude-haiku-4", Price{1, 5}},
	{"claude-3-5-haiku", Price{0.8, 4}},
	{"claude-3-haiku", Price{0.25, 1.25}},
	{"claude-haiku", Price{1, 5}},
	{"claude-sonnet", Price{3, 15}},
	{"claude-3-7-sonnet", Price{3, 15}},
	{"claude-3-5-sonnet", Price{3, 15}},
	{"claude-opus-4-5", Price{5, 25}},
	{"claude-opus", Price{15, 75}},

	{"gpt-4o-mini", Price{0.15, 0.6}},
	{"gpt-4o", Price{2.5, 10}},
	{"gpt-4.1-nano", Price{0.1, 0.4}},
	{"gpt-4.1-mini", Price{0.4, 1.6}},
	{"gpt-4.1", Price{2, 8}},
	{"gpt-5-nano", Price{0.05, 0.4}},
	{"gpt-5-mini", Price{0.25, 2}},
	{"gpt-5", Price{1.25, 10}},
	{"gpt-3.5-turbo", Price{0.5, 1.5}},
	{"o4-mini", Price{1.1, 4.4}},

	{"deepseek-chat", Price{0.27, 1.1}},
	{"deepseek-reasoner", Price{0.55, 2.19}},

	{"gemini-2.0-flash-lite", Price{0.075, 0.3}},
	{"gemini-2.0-flash", Price{0.1, 0.4}},
	{"gemini-2.5-flash-lite", Price{0.1, 0.4}},
	{"gemini-2.5-flash", Price{0.3, 2.5}},
	{"gemini-2.5-pro", Price{1.25, 10}},
	{"gemini-flash-lite", Price{0.1, 0.4}},
	{"gemini-flash", Price{0.3, 2.5}},
}

// PriceOf returns the price for a model ID. Router IDs such as
// "openai/gpt-4o-mini" are priced by the part after the slash. Unknown
// models, including every Volcengine endpoint, report false.
func PriceOf(model string) (Price, bool) {
	model = strings.ToLower(strings.TrimSpace(model))
	if _, bare, ok := strings.Cut(model, "/"); ok {
		model = bare
	}
	for _, r := range priceRules {
		if strings.HasPrefix(model, r.prefix) {
			return r.price, true
		}
	}
	return Price{}, false
}
