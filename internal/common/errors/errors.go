// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Classification / pipeline errors
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"

	// Product search errors
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	// Chat history errors
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"

	// Hosted AI endpoint errors
	ErrCodeLLMTimeout         ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMSynthesisFailed ErrorCode = "LLM_SYNTHESIS_FAILED"
	ErrCodeLLMBadResponse     ErrorCode = "LLM_BAD_RESPONSE"
	ErrCodeTTSTimeout         ErrorCode = "TTS_TIMEOUT"
	ErrCodeTTSFailed          ErrorCode = "TTS_FAILED"

	// Email / notification errors
	ErrCodeEmailValidationFailed  ErrorCode = "EMAIL_VALIDATION_FAILED"
	ErrCodeEmailSendFailed        ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	// Generic
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ConvertToBPMNError maps a StandardError onto the workflow-facing shape.
func ConvertToBPMNError(err *StandardError) *BPMNError {
	return &BPMNError{
		Code:      string(err.Code),
		Message:   err.Message,
		Details:   err.Details,
		Retryable: err.Retryable,
		Retries:   GetRetryCount(err.Code),
		ErrorVariables: map[string]interface{}{
			"errorCategory": GetErrorCategory(err.Code),
		},
	}
}

// retryCounts pins the retry budget per error code; unknown codes get zero.
var retryCounts = map[ErrorCode]int{
	ErrCodeElasticsearchConnectionFailed: 3,
	ErrCodeSearchQueryFailed:             2,
	ErrCodeSearchTimeout:                 2,
	ErrCodeDatabaseConnectionFailed:      3,
	ErrCodeDatabaseInsertFailed:          2,
	ErrCodeQueryTimeout:                  2,
	ErrCodeLLMTimeout:                    1,
	ErrCodeLLMSynthesisFailed:            1,
	ErrCodeTTSTimeout:                    1,
	ErrCodeEmailSendFailed:               2,
	ErrCodeNotificationSendFailed:        1,
	ErrCodeExternalService:               2,
	ErrCodeTimeout:                       1,
}

// GetRetryCount returns the remaining-retry budget for a code.
func GetRetryCount(code ErrorCode) int {
	return retryCounts[code]
}

// GetErrorCategory groups codes for dashboards and routing.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeElasticsearchConnectionFailed, ErrCodeSearchQueryFailed, ErrCodeSearchTimeout, ErrCodeIndexNotFound:
		return "search"
	case ErrCodeDatabaseConnectionFailed, ErrCodeDatabaseInsertFailed, ErrCodeQueryTimeout:
		return "database"
	case ErrCodeLLMTimeout, ErrCodeLLMSynthesisFailed, ErrCodeLLMBadResponse, ErrCodeTTSTimeout, ErrCodeTTSFailed:
		return "ai"
	case ErrCodeEmailValidationFailed, ErrCodeEmailSendFailed, ErrCodeNotificationSendFailed:
		return "communication"
	case ErrCodeClassificationFailed:
		return "classification"
	default:
		return "internal"
	}
}

// ==========================
// 3. Error Constructors
// ==========================

func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewIndexNotFoundError(index string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM endpoint timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewLLMSynthesisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMSynthesisFailed,
		Message:   "LLM synthesis failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewEmailValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailValidationFailed,
		Message:   "Email validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewEmailSendFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Failed to send email",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service %s error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Timeout calling %s", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
