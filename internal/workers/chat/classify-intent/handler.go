package classifyintent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shopchat-workers/internal/common/metrics"
	"shopchat-workers/internal/common/validation"
	"shopchat-workers/internal/intent"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-intent"
)

var (
	ErrInvalidInput = errors.New("CLASSIFICATION_INVALID_INPUT")
)

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config     *Config
	classifier *intent.Classifier
	logger     Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config:     config,
		classifier: intent.NewClassifier(nil),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// GetInputSchema describes the variables the classify-intent task expects.
func GetInputSchema() validation.JSONSchema {
	maxLen := 2000
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"query": {
				Type:        "string",
				Description: "Raw user message to classify",
				MaxLength:   &maxLen,
			},
			"conversationId": {Type: "string"},
			"userId":         {Type: "string"},
			"context":        {Type: "object"},
		},
		Required:             []string{"query"},
		AdditionalProperties: true,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return err
	}

	if result := validation.ValidateInput(raw, GetInputSchema()); !result.Valid {
		err := fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(result.GetErrorMessages(), "; "))
		h.failJob(client, job, err, 0)
		return err
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err), 0)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output := h.execute(ctx, &input)
	h.completeJob(client, job, output)
	return nil
}

// execute never fails: the classifier is total over its input and downstream
// gateways route on the unknown intent rather than on job failure.
func (h *Handler) execute(_ context.Context, input *Input) *Output {
	result := h.classifier.Classify(input.Query)

	metrics.ClassifiedIntents.WithLabelValues(
		string(result.Intent),
		strconv.FormatBool(result.RequiresData),
	).Inc()

	h.logger.Info("query classified", map[string]interface{}{
		"intent":       string(result.Intent),
		"confidence":   result.Confidence,
		"requiresData": result.RequiresData,
		"hasEntities":  !result.Entities.IsEmpty(),
	})

	return &Output{
		Intent:            string(result.Intent),
		Confidence:        result.Confidence,
		RequiresData:      result.RequiresData,
		ExtractedEntities: result.Entities,
		Reasoning:         result.Reasoning,
	}
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
	if errors.Is(err, ErrInvalidInput) {
		errorCode = "CLASSIFICATION_INVALID_INPUT"
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

func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	return h.execute(ctx, input)
}
