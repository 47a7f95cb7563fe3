// internal/models/chat.go
package models

import "time"

// ChatMessage represents a single turn stored for a conversation.
type ChatMessage struct {
	ID             string                 `json:"id" db:"id"`
	ConversationID string                 `json:"conversationId" db:"conversation_id"`
	UserID         string                 `json:"userId" db:"user_id"`
	Role           string                 `json:"role" db:"role"` // "user" or "assistant"
	Content        string                 `json:"content" db:"content"`
	Intent         string                 `json:"intent,omitempty" db:"intent"`
	Confidence     float64                `json:"confidence,omitempty" db:"confidence"`
	Entities       map[string]interface{} `json:"entities,omitempty" db:"entities"`
	CreatedAt      time.Time              `json:"createdAt" db:"created_at"`
}

// Conversation groups the messages exchanged in one chat session.
type Conversation struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"userId" db:"user_id"`
	Title        string    `json:"title,omitempty" db:"title"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	LastActivity time.Time `json:"lastActivity" db:"last_activity"`
}
