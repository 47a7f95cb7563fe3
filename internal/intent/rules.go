package intent

import "regexp"

// Rule associates one intent with its lowercase keyword substrings and its
// match patterns. Patterns whose first capture group is non-empty double as
// product-name extractors for the data-requiring intents.
//
// All patterns are written without nested quantifiers so matching stays
// linear even on pathological input.
type Rule struct {
	Intent   Intent
	Keywords []string
	Patterns []*regexp.Regexp
}

// RuleSet is the immutable configuration the classifier runs against. Build
// it once at startup with DefaultRules and share it freely; it is never
// mutated after construction.
type RuleSet struct {
	// Rules are iterated in declaration order. Ties on score keep the
	// first-seen highest intent, so the order below is part of the contract.
	Rules []Rule

	// DomainKeywords drive the product_info fallback when nothing scored.
	DomainKeywords []string

	// Categories are tried most-specific-first so "headphone" never falls
	// through to the generic phone rule.
	Categories []CategoryPattern

	// Brands gate product-name extraction for product_search queries.
	Brands []string

	brandPattern *regexp.Regexp
}

// CategoryPattern ties one category tag to its recognizer.
type CategoryPattern struct {
	Tag     string
	Pattern *regexp.Regexp
}

// DefaultRules returns the standard rule table for the shop assistant.
func DefaultRules() *RuleSet {
	rs := &RuleSet{
		Rules: []Rule{
			{
				Intent:   IntentProductPrice,
				Keywords: []string{"price", "cost", "how much", "rate", "mrp", "kitna"},
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)price of (.+)`),
					regexp.MustCompile(`(?i)cost of (.+)`),
					regexp.MustCompile(`(?i)how much (?:is|for|does) (.+)`),
					regexp.MustCompile(`(?i)(.+?) (?:price|cost)\b`),
				},
			},
			{
				Intent:   IntentProductReviews,
				Keywords: []string{"review", "rating", "feedback", "opinion", "worth buying"},
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)reviews? (?:of|for|on) (.+)`),
					regexp.MustCompile(`(?i)(.+?) reviews?\b`),
					regexp.MustCompile(`(?i)what do people (?:say|think) about (.+)`),
					regexp.MustCompile(`(?i)is (.+?) worth buying`),
				},
			},
			{
				Intent:   IntentProductInfo,
				Keywords: []string{"spec", "specification", "detail", "feature", "warranty", "tell me about"},
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)tell me about (.+)`),
					regexp.MustCompile(`(?i)(?:specs?|specifications?|features?|details?) of (.+)`),
					regexp.MustCompile(`(?i)information (?:about|on) (.+)`),
				},
			},
			{
				Intent:   IntentProductComparison,
				Keywords: []string{"compare", "comparison", "vs", "versus", "difference between", "better"},
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)compare (.+)`),
					regexp.MustCompile(`(?i)difference between (.+?) and (.+)`),
					regexp.MustCompile(`(?i)(.+?) (?:vs\.?|versus) (.+)`),
					regexp.MustCompile(`(?i)which is better[,:]? (.+)`),
				},
			},
			{
				Intent:   IntentProductSearch,
				Keywords: []string{"best", "top", "show me", "find", "search", "recommend", "suggest", "under", "cheapest", "budget", "looking for"},
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)\b(?:best|top|cheapest) (.+)`),
					regexp.MustCompile(`(?i)(?:show|find|search|recommend|suggest)(?: me)? (.+)`),
					regexp.MustCompile(`(?i)looking for (.+)`),
					regexp.MustCompile(`(?i)\bunder\s+(?:rs\.?\s*|₹\s*)?\d`),
				},
			},
			{
				Intent:   IntentEmailRequest,
				Keywords: []string{"email", "mail", "send me", "inbox"},
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)(?:email|mail|send) (?:me |it |this |us )?(?:the )?(?:details?|list|info|information|summary)`),
					regexp.MustCompile(`(?i)send .+ (?:to|on) my (?:email|mail|inbox)`),
				},
			},
			{
				// Interrogative openers are handled by the classifier
				// fallback, not a pattern here, so product questions keep
				// outscoring this rule.
				Intent:   IntentGeneralQuestion,
				Keywords: []string{"help", "can you", "how do i", "explain"},
			},
			{
				Intent:   IntentGreeting,
				Keywords: []string{"hello", "hey", "good morning", "good afternoon", "good evening", "namaste", "greetings"},
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)^\s*(?:hi|hii+|hello|hey|yo|namaste)\b`),
					regexp.MustCompile(`(?i)^\s*good (?:morning|afternoon|evening)\b`),
				},
			},
			{
				Intent:   IntentAboutMe,
				Keywords: []string{"who are you", "your name", "what can you do", "about yourself"},
				Patterns: []*regexp.Regexp{
					regexp.MustCompile(`(?i)who (?:are|r) (?:you|u)\b`),
					regexp.MustCompile(`(?i)what can you do`),
					regexp.MustCompile(`(?i)tell me about yourself`),
				},
			},
		},
		DomainKeywords: []string{
			"cable", "charger", "adapter", "powerbank", "power bank", "phone",
			"smartphone", "mobile", "tv", "television", "laptop", "tablet",
			"headphone", "earphone", "earbud", "speaker", "soundbar", "watch",
			"camera", "usb", "hdmi", "boat", "ambrane", "samsung", "apple",
			"sony", "oneplus", "iqoo", "xiaomi", "realme", "jbl", "noise",
		},
		Categories: []CategoryPattern{
			{Tag: "headphone", Pattern: regexp.MustCompile(`(?i)head\s?phones?|head\s?sets?|earphones?|ear\s?buds?|airdopes|neckbands?`)},
			{Tag: "speaker", Pattern: regexp.MustCompile(`(?i)speakers?|sound\s?bars?`)},
			{Tag: "laptop", Pattern: regexp.MustCompile(`(?i)laptops?|notebooks?|macbooks?`)},
			{Tag: "tablet", Pattern: regexp.MustCompile(`(?i)tablets?|\bipads?\b`)},
			{Tag: "watch", Pattern: regexp.MustCompile(`(?i)smart\s?watch(?:es)?|\bwatch(?:es)?\b`)},
			{Tag: "camera", Pattern: regexp.MustCompile(`(?i)cameras?|\bdslr\b|go\s?pro`)},
			{Tag: "tv", Pattern: regexp.MustCompile(`(?i)\btvs?\b|televisions?`)},
			{Tag: "smartphone", Pattern: regexp.MustCompile(`(?i)smart\s?phones?|\bphones?\b|mobiles?`)},
		},
		Brands: []string{
			"iqoo", "oneplus", "samsung", "boat", "boult", "sony", "apple",
			"xiaomi", "realme", "oppo", "vivo", "jbl", "noise", "ambrane",
			"zebronics", "portronics",
		},
	}

	rs.brandPattern = compileBrandPattern(rs.Brands)
	return rs
}

// compileBrandPattern builds one alternation that captures a known brand
// plus up to three trailing words, e.g. "boat rugged v3".
func compileBrandPattern(brands []string) *regexp.Regexp {
	alt := ""
	for i, b := range brands {
		if i > 0 {
			alt += "|"
		}
		alt += regexp.QuoteMeta(b)
	}
	return regexp.MustCompile(`(?i)\b(` + alt + `)((?:\s+[a-z0-9][a-z0-9._-]*){0,3})`)
}

// ruleFor returns the rule declared for the given intent, or nil.
func (rs *RuleSet) ruleFor(i Intent) *Rule {
	for idx := range rs.Rules {
		if rs.Rules[idx].Intent == i {
			return &rs.Rules[idx]
		}
	}
	return nil
}
