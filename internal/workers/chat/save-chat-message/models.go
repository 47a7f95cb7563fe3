// internal/workers/chat/save-chat-message/models.go
package savechatmessage

type Input struct {
	ConversationID string                 `json:"conversationId"`
	UserID         string                 `json:"userId"`
	Role           string                 `json:"role"`
	Content        string                 `json:"content"`
	Intent         string                 `json:"intent,omitempty"`
	Confidence     float64                `json:"confidence,omitempty"`
	Entities       map[string]interface{} `json:"extractedEntities,omitempty"`
}

type Output struct {
	MessageID string `json:"messageId"`
	SavedAt   string `json:"savedAt"`
	Cached    bool   `json:"cached"`
}
