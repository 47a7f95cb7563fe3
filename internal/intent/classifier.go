package intent

import (
	"fmt"
	"math"
	"strings"
)

const (
	keywordScore     = 2
	patternBonus     = 5
	domainFallback   = 3
	questionFallback = 2
	maxScore         = 10

	// minConfidence gates weak classifications. Greetings and about_me are
	// exempt: a bare "Hello" is unambiguous no matter how little it scores.
	minConfidence = 0.2
)

var interrogatives = []string{"what", "why", "how", "when", "where", "who"}

// Classifier scores messages against an immutable RuleSet. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	rules *RuleSet
}

// NewClassifier builds a classifier over the given rule set. A nil rule set
// falls back to DefaultRules.
func NewClassifier(rules *RuleSet) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify determines the intent of a free-text user message and extracts
// the entities a product lookup would need. It never fails: malformed or
// empty input yields the unknown intent with zero confidence.
func (c *Classifier) Classify(query string) Classification {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Classification{
			Intent:    IntentUnknown,
			Reasoning: "empty query",
		}
	}

	lower := strings.ToLower(trimmed)

	best := IntentUnknown
	bestScore := 0
	var bestKeywords, bestPatterns int

	for _, rule := range c.rules.Rules {
		keywords := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				keywords++
			}
		}
		score := keywords * keywordScore

		patterns := 0
		for _, p := range rule.Patterns {
			if p.MatchString(trimmed) {
				patterns++
			}
		}
		if patterns > 0 {
			score += patternBonus
		}

		// Strictly greater: ties keep the first-declared intent.
		if score > bestScore {
			best = rule.Intent
			bestScore = score
			bestKeywords = keywords
			bestPatterns = patterns
		}
	}

	reasoning := fmt.Sprintf("matched %d keyword(s) and %d pattern(s) for %s", bestKeywords, bestPatterns, best)

	if bestScore == 0 {
		best, bestScore, reasoning = c.fallback(lower)
	}

	confidence := math.Round(math.Min(float64(bestScore), maxScore)*10) / 100

	// Low-confidence gate. The confidence value is kept as computed.
	if confidence < minConfidence && best != IntentGreeting && best != IntentAboutMe {
		if bestScore > 0 {
			best = IntentGeneralQuestion
		} else {
			best = IntentUnknown
		}
		reasoning += "; demoted below confidence threshold"
	}

	result := Classification{
		Intent:       best,
		Confidence:   confidence,
		RequiresData: RequiresData(best),
		Reasoning:    reasoning,
	}

	if result.RequiresData {
		result.Entities = c.extractEntities(trimmed, best)
	}

	return result
}

// fallback applies the no-score heuristics: product-domain vocabulary first,
// then a leading interrogative, else unknown.
func (c *Classifier) fallback(lower string) (Intent, int, string) {
	for _, kw := range c.rules.DomainKeywords {
		if strings.Contains(lower, kw) {
			return IntentProductInfo, domainFallback, fmt.Sprintf("fallback: product keyword %q", kw)
		}
	}
	for _, q := range interrogatives {
		if strings.HasPrefix(lower, q) {
			return IntentGeneralQuestion, questionFallback, "fallback: interrogative opening"
		}
	}
	return IntentUnknown, 0, "no rule matched"
}

func (c *Classifier) extractEntities(query string, final Intent) Entities {
	e := Entities{
		ProductCategory: c.rules.ExtractCategory(query),
	}
	if limit, ok := c.rules.ExtractLimit(query); ok {
		e.Limit = limit
	}
	if pr, ok := c.rules.ExtractPriceRange(query); ok {
		e.PriceRange = &pr
	}
	e.ProductName = c.rules.ExtractProductName(query, final)
	return e
}
