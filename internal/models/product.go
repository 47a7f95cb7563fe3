// internal/models/product.go
package models

type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`
	MRP         float64  `json:"mrp,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	ReviewCount int      `json:"reviewCount,omitempty"`
	InStock     bool     `json:"inStock"`
	Tags        []string `json:"tags,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
}

type ProductReview struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Rating    float64 `json:"rating"`
	Title     string  `json:"title,omitempty"`
	Body      string  `json:"body"`
	Author    string  `json:"author,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

type ProductSearchResult struct {
	Products   []Product `json:"products"`
	TotalCount int       `json:"totalCount"`
	Query      string    `json:"query"`
	TookMs     int       `json:"tookMs,omitempty"`
}
