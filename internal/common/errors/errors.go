// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeAnalysisInputInvalid  ErrorCode = "ANALYSIS_INPUT_INVALID"
	ErrCodeAnalysisOutputInvalid ErrorCode = "ANALYSIS_OUTPUT_INVALID"

	ErrCodeFlagClassificationFailed ErrorCode = "FLAG_CLASSIFICATION_FAILED"
	ErrCodeSubjectExtractionFailed  ErrorCode = "SUBJECT_EXTRACTION_FAILED"
	ErrCodeGenAIAPITimeout          ErrorCode = "GENAI_API_TIMEOUT"

	ErrCodeRedisConnectionFailed ErrorCode = "REDIS_CONNECTION_FAILED"
	ErrCodeCacheReadFailed       ErrorCode = "CACHE_READ_FAILED"
	ErrCodeCacheWriteFailed      ErrorCode = "CACHE_WRITE_FAILED"
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

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewAnalysisInputInvalidError creates a non-retryable input error.
func NewAnalysisInputInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisInputInvalid,
		Message:   "Analysis input could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisOutputInvalidError creates a non-retryable contract violation error.
func NewAnalysisOutputInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisOutputInvalid,
		Message:   "Analysis output failed contract validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFlagClassificationFailedError creates a retryable upstream classifier error.
func NewFlagClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFlagClassificationFailed,
		Message:   "Flag classification API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSubjectExtractionFailedError creates a retryable upstream extractor error.
func NewSubjectExtractionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubjectExtractionFailed,
		Message:   "Subject extraction API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenAIAPITimeoutError creates a retryable GenAI timeout error.
func NewGenAIAPITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenAIAPITimeout,
		Message:   "GenAI API timeout",
		Details:   "API call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRedisConnectionFailedError creates a retryable cache connection error.
func NewRedisConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRedisConnectionFailed,
		Message:   "Redis connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeAnalysisInputInvalid:     "ANALYSIS_INPUT_INVALID",
	ErrCodeAnalysisOutputInvalid:    "ANALYSIS_OUTPUT_INVALID",
	ErrCodeFlagClassificationFailed: "FLAG_CLASSIFICATION_FAILED",
	ErrCodeSubjectExtractionFailed:  "SUBJECT_EXTRACTION_FAILED",
	ErrCodeGenAIAPITimeout:          "GENAI_API_TIMEOUT",
	ErrCodeRedisConnectionFailed:    "REDIS_CONNECTION_FAILED",
	ErrCodeCacheReadFailed:          "CACHE_READ_FAILED",
	ErrCodeCacheWriteFailed:         "CACHE_WRITE_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeFlagClassificationFailed,
		ErrCodeSubjectExtractionFailed,
		ErrCodeRedisConnectionFailed:
		return 3 // Retryable technical errors

	case ErrCodeGenAIAPITimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Contract/business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
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

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ANALYSIS"):
		return "CONTRACT"
	case strings.Contains(codeStr, "CACHE") || strings.Contains(codeStr, "REDIS"):
		return "CACHE"
	case strings.Contains(codeStr, "CLASSIFICATION") || strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "GENAI"):
		return "AI"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
