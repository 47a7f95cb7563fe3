package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
)

// ProductQuery defines the structure of a query request
type ProductQuery struct {
	Index      string
	QueryType  string
	SearchText string
	Category   string
	ProductID  string
	PriceMin   float64
	PriceMax   float64
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type and filters
func BuildQuery(esClient *elasticsearch.Client, pq ProductQuery) (*esapi.SearchRequest, error) {
	if pq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch pq.QueryType {
	case "product_search":
		queryBody = buildProductSearchQuery(pq)
	case "product_details":
		queryBody = buildProductDetailsQuery(pq)
	case "related_products":
		queryBody = buildRelatedProductsQuery(pq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, pq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{pq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &pq.Pagination.From,
		Size:   &pq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildProductSearchQuery builds the main catalog search query dynamically
func buildProductSearchQuery(pq ProductQuery) map[string]interface{} {
	boolQuery := make(map[string]interface{})
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if pq.SearchText != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  pq.SearchText,
				"fields": []string{"name^3", "brand^2", "description", "tags"},
				"type":   "best_fields",
			},
		})
	}

	if pq.Category != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"category": pq.Category},
		})
	}

	// Price filter. Min is exclusive of nothing, max of nothing; callers pass
	// zero for an unbounded side.
	if pq.PriceMin > 0 || pq.PriceMax > 0 {
		rangeBody := map[string]interface{}{}
		if pq.PriceMin > 0 {
			rangeBody["gte"] = pq.PriceMin
		}
		if pq.PriceMax > 0 {
			rangeBody["lte"] = pq.PriceMax
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"price": rangeBody},
		})
	}

	filterClauses = append(filterClauses, map[string]interface{}{
		"term": map[string]interface{}{"in_stock": true},
	})

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery["must"] = mustClauses
	boolQuery["filter"] = filterClauses

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	// Relevance first, rating as tiebreaker
	query["sort"] = []map[string]interface{}{
		{"_score": "desc"},
		{"rating": "desc"},
	}

	return query
}

// buildProductDetailsQuery looks up one product by name or id
func buildProductDetailsQuery(pq ProductQuery) map[string]interface{} {
	if pq.ProductID != "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"term": map[string]interface{}{"_id": pq.ProductID},
			},
		}
	}

	if pq.SearchText == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"name": map[string]interface{}{
					"query":    pq.SearchText,
					"operator": "and",
				},
			},
		},
	}
}

// buildRelatedProductsQuery builds "similar products" query
func buildRelatedProductsQuery(pq ProductQuery) map[string]interface{} {
	if pq.ProductID == "" {
		return map[string]interface{}{
			"query": map[string]interface{}{
				"match_none": map[string]interface{}{},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"more_like_this": map[string]interface{}{
				"fields": []string{"name", "description", "category", "tags"},
				"like": []map[string]interface{}{
					{"_index": pq.Index, "_id": pq.ProductID},
				},
				"min_term_freq":   1,
				"max_query_terms": 12,
				"min_doc_freq":    1,
				"min_word_length": 3,
			},
		},
	}
}
