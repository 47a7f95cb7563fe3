// Package intent implements the rule-based query understanding engine for
// the chat assistant: it classifies a free-text user message into one of a
// closed set of intents and extracts the structured parameters (product
// name, category, result limit, price range) that drive the downstream
// product lookup.
//
// The engine is deterministic, stateless and total over its input: any
// string, including empty, whitespace-only or non-Latin text, yields a
// well-formed Classification without panicking.
package intent

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentProductPrice      Intent = "product_price"
	IntentProductReviews    Intent = "product_reviews"
	IntentProductInfo       Intent = "product_info"
	IntentProductComparison Intent = "product_comparison"
	IntentProductSearch     Intent = "product_search"
	IntentEmailRequest      Intent = "email_request"
	IntentGeneralQuestion   Intent = "general_question"
	IntentGreeting          Intent = "greeting"
	IntentAboutMe           Intent = "about_me"
	IntentUnknown           Intent = "unknown"
)

// dataRequiring maps each intent to whether answering it needs a product
// store lookup. This is a pure function of the intent, never of the
// extracted entities.
var dataRequiring = map[Intent]bool{
	IntentProductPrice:      true,
	IntentProductReviews:    true,
	IntentProductInfo:       true,
	IntentProductComparison: true,
	IntentProductSearch:     true,
	IntentEmailRequest:      true,
	IntentGeneralQuestion:   false,
	IntentGreeting:          false,
	IntentAboutMe:           false,
	IntentUnknown:           false,
}

// RequiresData reports whether the given intent needs a product lookup.
func RequiresData(i Intent) bool {
	return dataRequiring[i]
}

// PriceRange is a half-specified budget constraint. Min is always >= 0 and
// strictly less than Max; extractors reject anything else.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Entities holds the structured values pulled out of a message. Every field
// is independently optional; the zero value means "not specified".
type Entities struct {
	ProductName     string      `json:"productName,omitempty"`
	ProductCategory string      `json:"productCategory,omitempty"`
	Limit           int         `json:"limit,omitempty"`
	PriceRange      *PriceRange `json:"priceRange,omitempty"`
}

// IsEmpty reports whether no entity was extracted.
func (e Entities) IsEmpty() bool {
	return e.ProductName == "" && e.ProductCategory == "" && e.Limit == 0 && e.PriceRange == nil
}

// Classification is the result of classifying one message. It is a pure
// function of the input string and the static rule tables and has no
// identity beyond the call that produced it.
type Classification struct {
	Intent       Intent   `json:"intent"`
	Confidence   float64  `json:"confidence"`
	RequiresData bool     `json:"requiresData"`
	Entities     Entities `json:"extractedEntities"`
	Reasoning    string   `json:"reasoning,omitempty"`
}
