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
	// Input validation
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeResultNotFound      ErrorCode = "RESULT_NOT_FOUND"
	ErrCodeTemplateNotFound    ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateMismatch    ErrorCode = "TEMPLATE_MISMATCH"
	ErrCodeGoalNotTeamFit      ErrorCode = "GOAL_NOT_TEAM_FIT"
	ErrCodeBlankTaxonomyCode   ErrorCode = "BLANK_TAXONOMY_CODE"
	ErrCodeSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"

	// Data access
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeCompetencyLoadFailed     ErrorCode = "COMPETENCY_LOAD_FAILED"

	// External sources
	ErrCodeTaxonomyFetchFailed ErrorCode = "TAXONOMY_FETCH_FAILED"

	// Notifications
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
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

// NewInvalidInputError creates a non-retryable validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResultNotFoundError reports the precise subset of result ids that could not be resolved.
func NewResultNotFoundError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultNotFound,
		Message:   "One or more test results not found",
		Details:   fmt.Sprintf("missing resultIds: %v", missing),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(templateID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Test template not found",
		Details:   fmt.Sprintf("templateId: %s", templateID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateMismatchError signals a result that belongs to a different template.
func NewTemplateMismatchError(resultID, wantTemplate, gotTemplate string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateMismatch,
		Message:   "Test result belongs to a different template",
		Details:   fmt.Sprintf("resultId: %s, expected template: %s, got: %s", resultID, wantTemplate, gotTemplate),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGoalNotTeamFitError rejects comparison over a template whose goal is not TEAM_FIT.
func NewGoalNotTeamFitError(goal string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGoalNotTeamFit,
		Message:   "Comparison requires a team-fit template",
		Details:   fmt.Sprintf("template goal: %s", goal),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompetencyLoadFailedError creates a retryable competency load error.
func NewCompetencyLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompetencyLoadFailed,
		Message:   "Competency catalog load error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTaxonomyFetchFailedError creates a retryable external taxonomy error.
func NewTaxonomyFetchFailedError(socCode string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTaxonomyFetchFailed,
		Message:   "External taxonomy fetch error",
		Details:   fmt.Sprintf("socCode: %s, error: %s", socCode, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Failed to send notification",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
