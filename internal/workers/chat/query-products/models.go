// internal/workers/chat/query-products/models.go
package queryproducts

import "shopchat-workers/internal/intent"

type Input struct {
	Intent            string          `json:"intent"`
	ExtractedEntities intent.Entities `json:"extractedEntities"`
	ProductID         string          `json:"productId,omitempty"`
	Pagination        Pagination      `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Products  []map[string]interface{} `json:"products"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
