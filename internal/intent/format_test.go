package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassificationString(t *testing.T) {
	c := Classification{
		Intent:       IntentProductSearch,
		Confidence:   0.7,
		RequiresData: true,
		Entities: Entities{
			ProductCategory: "headphone",
			Limit:           10,
			PriceRange:      &PriceRange{Min: 0, Max: 2000},
		},
	}

	out := c.String()

	assert.Contains(t, out, "Intent: product_search")
	assert.Contains(t, out, "Confidence: 70%")
	assert.Contains(t, out, "Requires data: true")
	assert.Contains(t, out, "Category: headphone")
	assert.Contains(t, out, "Limit: 10")
	assert.Contains(t, out, "Price range: ₹0 - ₹2000")
	assert.NotContains(t, out, "Product:")
}

func TestClassificationString_MinimalFields(t *testing.T) {
	c := Classification{Intent: IntentGreeting, Confidence: 0.7}

	out := c.String()

	assert.Contains(t, out, "Intent: greeting")
	assert.Contains(t, out, "Requires data: false")
	assert.NotContains(t, out, "Category:")
	assert.NotContains(t, out, "Price range:")
}
