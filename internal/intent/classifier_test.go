package intent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Core Classification Tests
// ==========================

func TestClassify_Scenarios(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name         string
		query        string
		wantIntent   Intent
		requiresData bool
		validate     func(t *testing.T, result Classification)
	}{
		{
			name:         "price lookup with product name",
			query:        "What is the price of boat rugged v3?",
			wantIntent:   IntentProductPrice,
			requiresData: true,
			validate: func(t *testing.T, result Classification) {
				assert.Contains(t, strings.ToLower(result.Entities.ProductName), "boat rugged v3")
			},
		},
		{
			name:         "search with budget",
			query:        "Best USB cables under 500 rupees",
			wantIntent:   IntentProductSearch,
			requiresData: true,
			validate: func(t *testing.T, result Classification) {
				require.NotNil(t, result.Entities.PriceRange)
				assert.Equal(t, 0.0, result.Entities.PriceRange.Min)
				assert.Equal(t, 500.0, result.Entities.PriceRange.Max)
			},
		},
		{
			name:         "comparison",
			query:        "Compare boat vs ambrane cables",
			wantIntent:   IntentProductComparison,
			requiresData: true,
		},
		{
			name:         "greeting survives the confidence gate",
			query:        "Hello",
			wantIntent:   IntentGreeting,
			requiresData: false,
			validate: func(t *testing.T, result Classification) {
				assert.Greater(t, result.Confidence, 0.0)
			},
		},
		{
			name:         "limit and category",
			query:        "Top 10 headphones",
			wantIntent:   IntentProductSearch,
			requiresData: true,
			validate: func(t *testing.T, result Classification) {
				assert.Equal(t, 10, result.Entities.Limit)
				assert.Equal(t, "headphone", result.Entities.ProductCategory)
			},
		},
		{
			name:         "rupee range with k suffix",
			query:        "between ₹10k to ₹20k phones",
			wantIntent:   IntentProductInfo,
			requiresData: true,
			validate: func(t *testing.T, result Classification) {
				require.NotNil(t, result.Entities.PriceRange)
				assert.Equal(t, 10000.0, result.Entities.PriceRange.Min)
				assert.Equal(t, 20000.0, result.Entities.PriceRange.Max)
			},
		},
		{
			name:         "reviews",
			query:        "Show me reviews of oneplus nord buds",
			wantIntent:   IntentProductReviews,
			requiresData: true,
		},
		{
			name:         "email request",
			query:        "Email me the details of this charger",
			wantIntent:   IntentEmailRequest,
			requiresData: true,
		},
		{
			name:         "assistant identity",
			query:        "Who are you?",
			wantIntent:   IntentAboutMe,
			requiresData: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.query)

			assert.Equal(t, tt.wantIntent, result.Intent)
			assert.Equal(t, tt.requiresData, result.RequiresData)
			if tt.validate != nil {
				tt.validate(t, result)
			}
		})
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	c := NewClassifier(nil)

	for _, query := range []string{"", "   ", "\t\n", "  \r\n  "} {
		result := c.Classify(query)

		assert.Equal(t, IntentUnknown, result.Intent)
		assert.Equal(t, 0.0, result.Confidence)
		assert.False(t, result.RequiresData)
		assert.True(t, result.Entities.IsEmpty())
	}
}

// ==========================
// Fallback Heuristics Tests
// ==========================

func TestClassify_Fallbacks(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name       string
		query      string
		wantIntent Intent
	}{
		{
			name:       "product vocabulary falls back to product_info",
			query:      "boat type c charger 3m",
			wantIntent: IntentProductInfo,
		},
		{
			name:       "interrogative opener falls back to general_question",
			query:      "why is the sky blue",
			wantIntent: IntentGeneralQuestion,
		},
		{
			name:       "nothing matches",
			query:      "lorem ipsum dolor",
			wantIntent: IntentUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.query)
			assert.Equal(t, tt.wantIntent, result.Intent)
		})
	}
}

func TestClassify_LowConfidenceGate(t *testing.T) {
	c := NewClassifier(nil)

	// A single fallback interrogative hit scores 2 -> confidence 0.2, at the
	// gate but not below it.
	result := c.Classify("when does it arrive")
	assert.Equal(t, IntentGeneralQuestion, result.Intent)
	assert.GreaterOrEqual(t, result.Confidence, 0.2)

	// Zero score stays unknown with the computed (zero) confidence.
	result = c.Classify("zzzz qqqq")
	assert.Equal(t, IntentUnknown, result.Intent)
	assert.Equal(t, 0.0, result.Confidence)
}

// ==========================
// Property Tests
// ==========================

func TestClassify_Totality(t *testing.T) {
	c := NewClassifier(nil)

	inputs := []string{
		"🎧🎧🎧 best earbuds 🎧",
		"सबसे अच्छा फोन कौन सा है",
		string([]byte{0x00, 0x01, 0x02}),
		strings.Repeat("price price price ", 500),
		strings.Repeat("a", 10000) + " price of " + strings.Repeat("b", 10000),
		"between between between to to to",
		"top top top 0 headphones",
	}

	for _, query := range inputs {
		result := c.Classify(query)

		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
		assert.Equal(t, RequiresData(result.Intent), result.RequiresData)
		if pr := result.Entities.PriceRange; pr != nil {
			assert.Less(t, pr.Min, pr.Max)
		}
		if result.Entities.Limit != 0 {
			assert.GreaterOrEqual(t, result.Entities.Limit, 1)
			assert.LessOrEqual(t, result.Entities.Limit, 100)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := NewClassifier(nil)

	queries := []string{
		"What is the price of boat rugged v3?",
		"Top 10 headphones",
		"hello there",
		"",
	}

	for _, query := range queries {
		first := c.Classify(query)
		second := c.Classify(query)
		assert.Equal(t, first, second)
	}
}

func TestClassify_TieBreakIsDeclarationOrder(t *testing.T) {
	// Two rules engineered to score identically: the first declared wins.
	rules := &RuleSet{
		Rules: []Rule{
			{Intent: IntentProductPrice, Keywords: []string{"widget"}},
			{Intent: IntentProductReviews, Keywords: []string{"widget"}},
		},
	}
	rules.brandPattern = compileBrandPattern([]string{"acme"})
	c := NewClassifier(rules)

	result := c.Classify("widget widget widget")
	assert.Equal(t, IntentProductPrice, result.Intent)
}

func TestRequiresData_MatchesStaticTable(t *testing.T) {
	assert.True(t, RequiresData(IntentProductPrice))
	assert.True(t, RequiresData(IntentProductReviews))
	assert.True(t, RequiresData(IntentProductInfo))
	assert.True(t, RequiresData(IntentProductComparison))
	assert.True(t, RequiresData(IntentProductSearch))
	assert.True(t, RequiresData(IntentEmailRequest))
	assert.False(t, RequiresData(IntentGeneralQuestion))
	assert.False(t, RequiresData(IntentGreeting))
	assert.False(t, RequiresData(IntentAboutMe))
	assert.False(t, RequiresData(IntentUnknown))
}
