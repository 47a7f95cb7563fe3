package queries

import (
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&decoded))
	return decoded
}

func TestBuildQuery_ProductSearch(t *testing.T) {
	pq := ProductQuery{
		Index:      "products",
		QueryType:  "product_search",
		SearchText: "boAt Airdopes",
		Category:   "headphone",
		PriceMin:   1000,
		PriceMax:   3000,
		Pagination: struct{ From, Size int }{0, 10},
	}

	req, err := BuildQuery(nil, pq)
	require.NoError(t, err)
	require.NotNil(t, req)

	assert.Equal(t, []string{"products"}, req.Index)
	assert.Equal(t, 10, *req.Size)

	body := decodeBody(t, req.Body)
	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	multiMatch := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	assert.Equal(t, "boAt Airdopes", multiMatch["query"])

	filters := boolQuery["filter"].([]interface{})
	// category term + price range + in_stock term
	assert.Len(t, filters, 3)
}

func TestBuildQuery_ProductSearch_NoFilters(t *testing.T) {
	pq := ProductQuery{
		Index:      "products",
		QueryType:  "product_search",
		Pagination: struct{ From, Size int }{0, 20},
	}

	req, err := BuildQuery(nil, pq)
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	_, isMatchAll := must[0].(map[string]interface{})["match_all"]
	assert.True(t, isMatchAll, "empty search should match all in-stock products")
}

func TestBuildQuery_ProductSearch_OpenEndedPrice(t *testing.T) {
	pq := ProductQuery{
		Index:      "products",
		QueryType:  "product_search",
		PriceMin:   5000,
		Pagination: struct{ From, Size int }{0, 20},
	}

	req, err := BuildQuery(nil, pq)
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	filters := boolQuery["filter"].([]interface{})

	var priceRange map[string]interface{}
	for _, f := range filters {
		if r, ok := f.(map[string]interface{})["range"]; ok {
			priceRange = r.(map[string]interface{})["price"].(map[string]interface{})
		}
	}
	require.NotNil(t, priceRange)
	assert.Equal(t, float64(5000), priceRange["gte"])
	_, hasMax := priceRange["lte"]
	assert.False(t, hasMax, "open-ended range must not have an upper bound")
}

func TestBuildQuery_ProductDetails(t *testing.T) {
	t.Run("by product id", func(t *testing.T) {
		pq := ProductQuery{
			Index:     "products",
			QueryType: "product_details",
			ProductID: "p-42",
		}
		req, err := BuildQuery(nil, pq)
		require.NoError(t, err)

		body := decodeBody(t, req.Body)
		term := body["query"].(map[string]interface{})["term"].(map[string]interface{})
		assert.Equal(t, "p-42", term["_id"])
	})

	t.Run("by name", func(t *testing.T) {
		pq := ProductQuery{
			Index:      "products",
			QueryType:  "product_details",
			SearchText: "iQOO Z9",
		}
		req, err := BuildQuery(nil, pq)
		require.NoError(t, err)

		body := decodeBody(t, req.Body)
		match := body["query"].(map[string]interface{})["match"].(map[string]interface{})
		nameQuery := match["name"].(map[string]interface{})
		assert.Equal(t, "iQOO Z9", nameQuery["query"])
		assert.Equal(t, "and", nameQuery["operator"])
	})

	t.Run("nothing to match", func(t *testing.T) {
		pq := ProductQuery{Index: "products", QueryType: "product_details"}
		req, err := BuildQuery(nil, pq)
		require.NoError(t, err)

		body := decodeBody(t, req.Body)
		_, isMatchNone := body["query"].(map[string]interface{})["match_none"]
		assert.True(t, isMatchNone)
	})
}

func TestBuildQuery_RelatedProducts(t *testing.T) {
	pq := ProductQuery{
		Index:     "products",
		QueryType: "related_products",
		ProductID: "p-7",
	}
	req, err := BuildQuery(nil, pq)
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	mlt := body["query"].(map[string]interface{})["more_like_this"].(map[string]interface{})
	like := mlt["like"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "p-7", like["_id"])
}

func TestBuildQuery_Errors(t *testing.T) {
	_, err := BuildQuery(nil, ProductQuery{QueryType: "product_search"})
	assert.ErrorIs(t, err, ErrMissingIndex)

	_, err = BuildQuery(nil, ProductQuery{Index: "products", QueryType: "aggregate_sales"})
	assert.ErrorIs(t, err, ErrUnknownQueryType)
}

func TestExecute_RejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]interface{}
		wantErr error
	}{
		{"missing index name", map[string]interface{}{"queryType": "product_search"}, ErrMissingIndex},
		{"index name wrong type", map[string]interface{}{"indexName": 7, "queryType": "product_search"}, ErrMissingIndex},
		{"empty index name", map[string]interface{}{"indexName": "", "queryType": "product_search"}, ErrMissingIndex},
		{"missing query type", map[string]interface{}{"indexName": "products"}, ErrUnknownQueryType},
		{"query type wrong type", map[string]interface{}{"indexName": "products", "queryType": 3}, ErrUnknownQueryType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Execute(context.Background(), nil, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
