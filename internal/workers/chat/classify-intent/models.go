// internal/workers/chat/classify-intent/models.go
package classifyintent

import "shopchat-workers/internal/intent"

type Input struct {
	Query          string                 `json:"query"`
	ConversationID string                 `json:"conversationId,omitempty"`
	UserID         string                 `json:"userId,omitempty"`
	Context        map[string]interface{} `json:"context,omitempty"`
}

type Output struct {
	Intent            string          `json:"intent"`
	Confidence        float64         `json:"confidence"`
	RequiresData      bool            `json:"requiresData"`
	ExtractedEntities intent.Entities `json:"extractedEntities"`
	Reasoning         string          `json:"reasoning,omitempty"`
}
