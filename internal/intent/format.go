package intent

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders a classification for logs and debugging: one line per
// populated field, currency values prefixed with the rupee sign.
func (c Classification) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Intent: %s\n", c.Intent)
	fmt.Fprintf(&b, "Confidence: %d%%\n", int(c.Confidence*100))
	fmt.Fprintf(&b, "Requires data: %t\n", c.RequiresData)

	if c.Entities.ProductName != "" {
		fmt.Fprintf(&b, "Product: %s\n", c.Entities.ProductName)
	}
	if c.Entities.ProductCategory != "" {
		fmt.Fprintf(&b, "Category: %s\n", c.Entities.ProductCategory)
	}
	if c.Entities.Limit > 0 {
		fmt.Fprintf(&b, "Limit: %d\n", c.Entities.Limit)
	}
	if pr := c.Entities.PriceRange; pr != nil {
		fmt.Fprintf(&b, "Price range: ₹%s - ₹%s\n", formatAmount(pr.Min), formatAmount(pr.Max))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
