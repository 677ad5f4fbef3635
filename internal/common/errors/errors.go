// Package errors carries the coded error type the query pipeline and the
// workflow worker report with, plus its mapping onto BPMN error variables.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeDatasetLoadFailed     ErrorCode = "DATASET_LOAD_FAILED"
	ErrCodeEarningsColumnMissing ErrorCode = "EARNINGS_COLUMN_MISSING"
	ErrCodeCacheReadFailed       ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWriteFailed      ErrorCode = "CACHE_WRITE_FAILED"
	ErrCodeInvalidQueryInput     ErrorCode = "INVALID_QUERY_INPUT"
	ErrCodeLLMTimeout            ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMSynthesisFailed    ErrorCode = "LLM_SYNTHESIS_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

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

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewDatasetLoadFailedError(err error) *StandardError {
	return newError(ErrCodeDatasetLoadFailed, "Dataset could not be loaded", err, true)
}

func NewEarningsColumnMissingError(err error) *StandardError {
	return newError(ErrCodeEarningsColumnMissing, "Earnings column is missing from the dataset", err, false)
}

func NewCacheReadFailedError(err error) *StandardError {
	return newError(ErrCodeCacheReadFailed, "Answer cache read failed", err, true)
}

func NewCacheWriteFailedError(err error) *StandardError {
	return newError(ErrCodeCacheWriteFailed, "Answer cache write failed", err, true)
}

func NewInvalidQueryInputError(details string) *StandardError {
	e := newError(ErrCodeInvalidQueryInput, "Query input is invalid", nil, false)
	e.Details = details
	return e
}

func NewLLMTimeoutError(err error) *StandardError {
	return newError(ErrCodeLLMTimeout, "LLM answer timeout", err, true)
}

func NewLLMSynthesisFailedError(err error) *StandardError {
	return newError(ErrCodeLLMSynthesisFailed, "LLM answer generation failed", err, true)
}

// AsStandard returns err as a *StandardError, wrapping unknown errors as INTERNAL_ERROR.
func AsStandard(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err, false)
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCacheReadFailed, ErrCodeCacheWriteFailed:
		return 2
	case ErrCodeDatasetLoadFailed, ErrCodeLLMTimeout, ErrCodeLLMSynthesisFailed:
		return 1
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "DATASET") || strings.Contains(codeStr, "COLUMN"):
		return "DATA"
	case strings.HasPrefix(codeStr, "CACHE"):
		return "CACHE"
	case strings.HasPrefix(codeStr, "LLM"):
		return "AI"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
