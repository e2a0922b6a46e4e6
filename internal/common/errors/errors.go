// Package errors provides standardized error handling for the validation pipeline.
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
	ErrCodeInvalidQuery         ErrorCode = "INVALID_QUERY"
	ErrCodeClassificationFailed ErrorCode = "CLASSIFICATION_FAILED"

	ErrCodeLLMOverloaded ErrorCode = "LLM_OVERLOADED"
	ErrCodeLLMTimeout    ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMCallFailed ErrorCode = "LLM_CALL_FAILED"

	ErrCodeTrendsUnavailable ErrorCode = "TRENDS_UNAVAILABLE"
	ErrCodeMalformedAnalysis ErrorCode = "MALFORMED_ANALYSIS"
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
// 2. Error Constructors
// ==========================

// NewInvalidQueryError creates a non-retryable input validation error.
func NewInvalidQueryError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuery,
		Message:   "Query is empty or invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError creates a non-retryable classification error.
func NewClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Error analyzing query",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMOverloadedError creates a retryable backend overload error.
func NewLLMOverloadedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMOverloaded,
		Message:   "Language model backend is overloaded",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMCallFailedError creates a non-retryable model invocation error.
func NewLLMCallFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMCallFailed,
		Message:   "Language model call failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrendsUnavailableError records a trends-provider outage. The pipeline
// treats this as absence of evidence, never as a run failure.
func NewTrendsUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrendsUnavailable,
		Message:   "Trends provider returned no data",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMalformedAnalysisError records unparseable model output.
func NewMalformedAnalysisError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedAnalysis,
		Message:   "Model output did not match the expected analysis schema",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
