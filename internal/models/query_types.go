// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeProductSearch  QueryType = "product_search"
	QueryTypeProductDetails QueryType = "product_details"
	QueryTypeProductReviews QueryType = "product_reviews"
	QueryTypePriceLookup    QueryType = "price_lookup"
	QueryTypeChatHistory    QueryType = "chat_history"
)
