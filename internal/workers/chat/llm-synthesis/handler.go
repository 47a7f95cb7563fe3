package llmsynthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"

	httpclient "shopchat-workers/internal/common/http"
)

const (
	TaskType = "llm-synthesis"
)

var (
	ErrLLMTimeout         = errors.New("LLM_TIMEOUT")
	ErrLLMSynthesisFailed = errors.New("LLM_SYNTHESIS_FAILED")
	ErrLLMBadResponse     = errors.New("LLM_BAD_RESPONSE")
)

// responseSchema is enforced on every generation response before it is
// forwarded into the process. A model that returns the wrong shape must not
// complete the job.
const responseSchema = `{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"confidence": {"type": "number"},
		"sources": {
			"type": ["array", "null"],
			"items": {"type": "string"}
		}
	},
	"required": ["text"]
}`

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config         *Config
	client         *httpclient.Client
	logger         Logger
	responseSchema *gojsonschema.Schema
}

func NewHandler(config *Config, log Logger) (*Handler, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(responseSchema))
	if err != nil {
		return nil, fmt.Errorf("compile response schema: %w", err)
	}

	return &Handler{
		config: config,
		// Per-attempt timeout; the job context bounds the whole retry loop.
		client: httpclient.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
		responseSchema: schema,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		retries := int32(0)
		if errors.Is(err, ErrLLMTimeout) {
			retries = 1
		} else if errors.Is(err, ErrLLMSynthesisFailed) {
			retries = 1
		}
		h.failJob(client, job, err, retries)
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	prompt := h.buildPrompt(input)
	requestBody := map[string]interface{}{
		"prompt": prompt,
		"model":  h.config.Model,
		"context": map[string]interface{}{
			"products": input.Products,
			"history":  input.ChatHistory,
			"intent":   input.Intent,
		},
		"max_tokens":  h.config.MaxTokens,
		"temperature": h.config.Temperature,
	}

	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Apply exponential backoff
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
				// Continue with retry
			case <-ctx.Done():
				return nil, ErrLLMTimeout
			}
		}

		// Build a fresh request per attempt; the body is consumed on send
		req, err := http.NewRequestWithContext(ctx, "POST", h.config.GenAIBaseURL+"/api/ai/generate", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if h.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+h.config.APIKey)
		}

		resp, lastErr = h.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			// For non-OK status codes, treat as error and retry
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrLLMTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrLLMTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrLLMSynthesisFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrLLMSynthesisFailed)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrLLMSynthesisFailed, err)
	}

	if err := h.validateResponse(rawBody); err != nil {
		return nil, err
	}

	var apiResponse struct {
		Text       string   `json:"text"`
		Confidence float64  `json:"confidence"`
		Sources    []string `json:"sources"`
	}
	if err := json.Unmarshal(rawBody, &apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrLLMBadResponse, err)
	}

	if strings.TrimSpace(apiResponse.Text) == "" {
		apiResponse.Text = "I don't have enough information to answer that. Could you rephrase?"
		apiResponse.Confidence = 0.1
	}

	if apiResponse.Confidence < 0.0 || apiResponse.Confidence > 1.0 {
		apiResponse.Confidence = 0.5
	}

	h.logger.Info("synthesis completed", map[string]interface{}{
		"confidence":  apiResponse.Confidence,
		"sourceCount": len(apiResponse.Sources),
	})

	return &Output{
		Reply:      apiResponse.Text,
		Confidence: apiResponse.Confidence,
		Sources:    apiResponse.Sources,
	}, nil
}

func (h *Handler) validateResponse(body []byte) error {
	result, err := h.responseSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLLMBadResponse, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return fmt.Errorf("%w: %s", ErrLLMBadResponse, strings.Join(details, "; "))
	}
	return nil
}

func (h *Handler) buildPrompt(input *Input) string {
	var parts []string

	parts = append(parts, "You are a shopping assistant for an electronics store. Answer the user's question based ONLY on the provided catalog data.")
	parts = append(parts, fmt.Sprintf("\nUser Question: %s", input.Query))
	parts = append(parts, fmt.Sprintf("Detected Intent: %s", input.Intent.Name))

	if len(input.Products) > 0 {
		productsJSON, _ := json.MarshalIndent(input.Products, "", "  ")
		parts = append(parts, "\nMatching Products:")
		parts = append(parts, string(productsJSON))
	} else if input.RequiresData {
		parts = append(parts, "\nNo matching products were found. Say so and suggest alternatives.")
	}

	if len(input.ChatHistory) > 0 {
		parts = append(parts, "\nRecent Conversation:")
		for _, msg := range input.ChatHistory {
			parts = append(parts, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
		}
	}

	return strings.Join(parts, "\n")
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)

	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error, retries int32) {
	errorCode := "UNKNOWN_ERROR"
	if errors.Is(err, ErrLLMTimeout) {
		errorCode = "LLM_TIMEOUT"
	} else if errors.Is(err, ErrLLMSynthesisFailed) {
		errorCode = "LLM_SYNTHESIS_FAILED"
	} else if errors.Is(err, ErrLLMBadResponse) {
		errorCode = "LLM_BAD_RESPONSE"
	}

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": errorCode,
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(retries).
		ErrorMessage(errorCode + ": " + err.Error()).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
