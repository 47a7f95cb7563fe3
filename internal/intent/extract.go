package intent

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// All extractors are side-effect-free functions of the query text (product
// names additionally depend on the final intent). Parse failures are never
// errors: an entity that cannot be extracted cleanly is simply omitted.

var (
	limitPattern = regexp.MustCompile(`(?i)\b(?:top|show|get|list|first)\s+(\d{1,3}|one|two|three|four|five|six|seven|eight|nine|ten|twenty|fifty)\b`)

	amount = `(?:rs\.?\s*|₹\s*)?(\d+(?:\.\d+)?)\s*(k|lakh|lac)?`

	betweenPattern = regexp.MustCompile(`(?i)\b(?:between|from)\s+` + amount + `\s*(?:to|and|-)\s*` + amount)
	underPattern   = regexp.MustCompile(`(?i)\b(?:under|below|within|less than)\s+` + amount)
	abovePattern   = regexp.MustCompile(`(?i)\b(?:above|over|more than)\s+` + amount)

	leadPhrases = []string{
		"what is the price of", "what is the cost of", "what is", "what are",
		"tell me about", "tell me", "show me", "give me", "get me", "get",
		"find me", "find", "search for", "i want to know about", "how much is",
	}

	// openEndedMax caps an "above X" range; mirrors the sentinel the product
	// index treats as unbounded.
	openEndedMax = 999999.0
)

var wordNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"twenty": 20, "fifty": 50,
}

// ExtractLimit pulls a result-count limit like "top 10" or "show five".
// Values outside [1,100] are rejected.
func (rs *RuleSet) ExtractLimit(query string) (int, bool) {
	m := limitPattern.FindStringSubmatch(query)
	if m == nil {
		return 0, false
	}
	raw := strings.ToLower(m[1])
	n, ok := wordNumbers[raw]
	if !ok {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, false
		}
		n = parsed
	}
	if n <= 0 || n > 100 {
		return 0, false
	}
	return n, true
}

// ExtractCategory returns the first category whose pattern matches, in the
// declared most-specific-first order, or "" if none do.
func (rs *RuleSet) ExtractCategory(query string) string {
	for _, cp := range rs.Categories {
		if cp.Pattern.MatchString(query) {
			return cp.Tag
		}
	}
	return ""
}

// ExtractPriceRange recognizes "between A and B", "under A" and "above A"
// phrasings with optional k (x1,000) and lakh/lac (x100,000) suffixes.
// A range whose min is not strictly below its max is rejected outright.
func (rs *RuleSet) ExtractPriceRange(query string) (PriceRange, bool) {
	if m := betweenPattern.FindStringSubmatch(query); m != nil {
		min, okMin := parseAmount(m[1], m[2])
		max, okMax := parseAmount(m[3], m[4])
		if okMin && okMax && min < max {
			return PriceRange{Min: min, Max: max}, true
		}
		return PriceRange{}, false
	}
	if m := underPattern.FindStringSubmatch(query); m != nil {
		max, ok := parseAmount(m[1], m[2])
		if ok && max > 0 {
			return PriceRange{Min: 0, Max: max}, true
		}
		return PriceRange{}, false
	}
	if m := abovePattern.FindStringSubmatch(query); m != nil {
		min, ok := parseAmount(m[1], m[2])
		if ok && min < openEndedMax {
			return PriceRange{Min: min, Max: openEndedMax}, true
		}
		return PriceRange{}, false
	}
	return PriceRange{}, false
}

func parseAmount(number, suffix string) (float64, bool) {
	v, err := strconv.ParseFloat(number, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	switch strings.ToLower(suffix) {
	case "k":
		v *= 1_000
	case "lakh", "lac":
		v *= 100_000
	}
	return v, true
}

// ExtractProductName pulls the product-name span for a data-requiring
// intent.
//
// product_search is brand-gated: without a known brand in the query there is
// no product name, so category-only searches like "best headphones" query by
// category alone instead of matching a spurious name. Every other intent
// first tries its rule patterns' capture groups and then falls back to
// stripping lead-in phrases.
func (rs *RuleSet) ExtractProductName(query string, final Intent) string {
	if final == IntentProductSearch {
		m := rs.brandPattern.FindStringSubmatch(query)
		if m == nil {
			return ""
		}
		return cleanProductName(m[1] + m[2])
	}

	if rule := rs.ruleFor(final); rule != nil {
		for _, p := range rule.Patterns {
			m := p.FindStringSubmatch(query)
			if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
				if name := cleanProductName(m[1]); name != "" {
					return name
				}
			}
		}
	}

	lower := strings.ToLower(strings.TrimSpace(query))
	for _, phrase := range leadPhrases {
		if strings.HasPrefix(lower, phrase) {
			lower = strings.TrimSpace(lower[len(phrase):])
			break
		}
	}
	return cleanProductName(lower)
}

// cleanProductName trims punctuation and deletes price/limit phrasing that
// leaked into a captured span ("phones under 20k" -> "phones").
func cleanProductName(s string) string {
	s = betweenPattern.ReplaceAllString(s, "")
	s = underPattern.ReplaceAllString(s, "")
	s = abovePattern.ReplaceAllString(s, "")
	s = limitPattern.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, " ?!.,:;")
	return strings.TrimSpace(s)
}
