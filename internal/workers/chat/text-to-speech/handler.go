package texttospeech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	httpclient "shopchat-workers/internal/common/http"
)

const (
	TaskType = "text-to-speech"
)

var (
	ErrTTSFailed      = errors.New("TTS_SYNTHESIS_FAILED")
	ErrTTSTimeout     = errors.New("TTS_TIMEOUT")
	ErrTextInvalid    = errors.New("TTS_TEXT_INVALID")
	ErrAudioCorrupted = errors.New("TTS_AUDIO_CORRUPTED")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *httpclient.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
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
		if errors.Is(err, ErrTTSTimeout) {
			retries = 1
		} else if errors.Is(err, ErrTTSFailed) {
			retries = 2
		}
		h.failJob(client, job, err, retries)
		return err
	}

	h.completeJob(client, job, output)
	return nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: reply text is empty", ErrTextInvalid)
	}
	if h.config.MaxChars > 0 && len(text) > h.config.MaxChars {
		return nil, fmt.Errorf("%w: reply exceeds %d characters", ErrTextInvalid, h.config.MaxChars)
	}

	voice := input.Voice
	if voice == "" {
		voice = h.config.Voice
	}
	format := input.Format
	if format == "" {
		format = h.config.Format
	}

	requestBody := map[string]interface{}{
		"text":   text,
		"voice":  voice,
		"format": format,
	}
	body, _ := json.Marshal(requestBody)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrTTSTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", h.config.TTSBaseURL+"/api/tts/synthesize", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTTSFailed, err)
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
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return nil, ErrTTSTimeout
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrTTSTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrTTSFailed, lastErr)
	}

	if resp == nil {
		return nil, fmt.Errorf("%w: no successful response after retries", ErrTTSFailed)
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Audio      string `json:"audio"` // base64
		Format     string `json:"format"`
		DurationMs int64  `json:"durationMs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, fmt.Errorf("%w: decode error: %v", ErrTTSFailed, err)
	}

	if apiResponse.Audio == "" {
		return nil, fmt.Errorf("%w: empty audio payload", ErrAudioCorrupted)
	}
	if _, err := base64.StdEncoding.DecodeString(apiResponse.Audio); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAudioCorrupted, err)
	}

	if apiResponse.Format == "" {
		apiResponse.Format = format
	}

	h.logger.Info("speech synthesized", map[string]interface{}{
		"chars":      len(text),
		"format":     apiResponse.Format,
		"durationMs": apiResponse.DurationMs,
	})

	return &Output{
		AudioBase64: apiResponse.Audio,
		Format:      apiResponse.Format,
		DurationMs:  apiResponse.DurationMs,
	}, nil
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
	switch {
	case errors.Is(err, ErrTTSTimeout):
		errorCode = "TTS_TIMEOUT"
	case errors.Is(err, ErrTextInvalid):
		errorCode = "TTS_TEXT_INVALID"
	case errors.Is(err, ErrAudioCorrupted):
		errorCode = "TTS_AUDIO_CORRUPTED"
	case errors.Is(err, ErrTTSFailed):
		errorCode = "TTS_SYNTHESIS_FAILED"
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
