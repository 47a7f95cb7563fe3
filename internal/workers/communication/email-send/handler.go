package emailsend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"shopchat-workers/internal/common/errors"
	"shopchat-workers/internal/common/logger"
	"shopchat-workers/internal/common/validation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "email-send"
)

type Handler struct {
	config       *Config
	service      *Service
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, deps ServiceDependencies) *Handler {
	log := deps.Logger.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		service:      NewService(deps, config),
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &raw); err != nil {
		parseErr := fmt.Errorf("parse input: %w", err)
		h.errorHandler.HandleJobError(ctx, client, job, parseErr)
		return parseErr
	}

	if result := validation.ValidateInput(raw, GetInputSchema()); !result.Valid {
		valErr := errors.NewEmailValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
		h.errorHandler.HandleJobError(ctx, client, job, valErr)
		return valErr
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		parseErr := fmt.Errorf("parse input: %w", err)
		h.errorHandler.HandleJobError(ctx, client, job, parseErr)
		return parseErr
	}

	output, err := h.service.Execute(ctx, &input)
	if err != nil {
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return err
	}

	h.completeJob(client, job, output)
	return nil
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.service.Execute(ctx, input)
}
