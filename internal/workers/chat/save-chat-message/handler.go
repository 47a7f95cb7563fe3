package savechatmessage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"shopchat-workers/internal/common/logger"
	"shopchat-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "save-chat-message"
)

var (
	ErrInvalidMessage       = errors.New("MESSAGE_VALIDATION_FAILED")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDatabaseTimeout      = errors.New("DATABASE_TIMEOUT")
)

var validRoles = map[string]bool{
	"user":      true,
	"assistant": true,
}

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		if errors.Is(err, ErrInvalidMessage) {
			errorCode = "MESSAGE_VALIDATION_FAILED"
		} else if errors.Is(err, ErrDatabaseTimeout) {
			errorCode = "DATABASE_TIMEOUT"
			retries = 2
		} else if errors.Is(err, ErrDatabaseInsertFailed) {
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := h.validate(input); err != nil {
		return nil, err
	}

	msg := models.ChatMessage{
		ID:             uuid.New().String(),
		ConversationID: input.ConversationID,
		UserID:         input.UserID,
		Role:           input.Role,
		Content:        input.Content,
		Intent:         input.Intent,
		Confidence:     input.Confidence,
		Entities:       input.Entities,
		CreatedAt:      time.Now().UTC(),
	}

	entitiesJSON, err := json.Marshal(msg.Entities)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal entities: %v", ErrInvalidMessage, err)
	}

	query := `INSERT INTO chat_messages (id, conversation_id, user_id, role, content, intent, confidence, entities, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err = h.db.ExecContext(ctx, query,
		msg.ID, msg.ConversationID, msg.UserID, msg.Role, msg.Content,
		msg.Intent, msg.Confidence, entitiesJSON, msg.CreatedAt,
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrDatabaseTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrDatabaseInsertFailed, err)
	}

	cached := h.cacheMessage(ctx, &msg)

	h.logger.Info("chat message saved", map[string]interface{}{
		"messageId":      msg.ID,
		"conversationId": msg.ConversationID,
		"role":           msg.Role,
		"cached":         cached,
	})

	return &Output{
		MessageID: msg.ID,
		SavedAt:   msg.CreatedAt.Format(time.RFC3339),
		Cached:    cached,
	}, nil
}

func (h *Handler) validate(input *Input) error {
	if input == nil {
		return fmt.Errorf("%w: input cannot be nil", ErrInvalidMessage)
	}
	if input.ConversationID == "" {
		return fmt.Errorf("%w: conversationId is required", ErrInvalidMessage)
	}
	if input.Content == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidMessage)
	}
	if !validRoles[input.Role] {
		return fmt.Errorf("%w: role must be user or assistant, got %q", ErrInvalidMessage, input.Role)
	}
	return nil
}

// cacheMessage pushes the message onto the conversation's recent-history
// list. Cache failures are logged and ignored; Postgres is the source of
// truth.
func (h *Handler) cacheMessage(ctx context.Context, msg *models.ChatMessage) bool {
	if h.redis == nil {
		return false
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return false
	}

	key := historyKey(msg.ConversationID)
	pipe := h.redis.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, h.config.HistoryLimit-1)
	pipe.Expire(ctx, key, h.config.HistoryTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		h.logger.Warn("failed to cache chat message", map[string]interface{}{
			"conversationId": msg.ConversationID,
			"error":          err.Error(),
		})
		return false
	}
	return true
}

// GetRecentHistory returns up to limit cached messages for a conversation,
// newest first.
func (h *Handler) GetRecentHistory(ctx context.Context, conversationID string, limit int64) ([]models.ChatMessage, error) {
	if h.redis == nil {
		return nil, nil
	}
	if limit <= 0 || limit > h.config.HistoryLimit {
		limit = h.config.HistoryLimit
	}

	raw, err := h.redis.LRange(ctx, historyKey(conversationID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	history := make([]models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		history = append(history, msg)
	}
	return history, nil
}

func historyKey(conversationID string) string {
	return "chat:history:" + conversationID
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
