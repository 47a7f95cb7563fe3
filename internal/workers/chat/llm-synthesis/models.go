// internal/workers/chat/llm-synthesis/models.go
package llmsynthesis

type Input struct {
	Query        string                   `json:"query"`
	Intent       Intent                   `json:"intentAnalysis"`
	Products     []map[string]interface{} `json:"products,omitempty"`
	ChatHistory  []HistoryMessage         `json:"chatHistory,omitempty"`
	RequiresData bool                     `json:"requiresData"`
}

type Output struct {
	Reply      string   `json:"reply"`
	Confidence float64  `json:"replyConfidence"`
	Sources    []string `json:"sources"`
}

type Intent struct {
	Name       string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
