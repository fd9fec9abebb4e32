package errors

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/feral-file/ff-crowdfund/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"
	ErrCodeForbidden        ErrorCode = "forbidden"
	ErrCodeConflict         ErrorCode = "conflict"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeServiceError  ErrorCode = "service_error"
)

// APIError represents a structured API error that carries error code and details
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	LedgerCode uint32    `json:"ledger_code,omitempty"` // numeric ledger error code, 1-24
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

// Error constructors for common error types
func NewBadRequestError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewNotFoundError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewValidationError(details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "Validation failed",
		Details: strings.Join(details, ", "),
	}
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewInternalError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeInternalError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

func NewServiceError(message string, details ...string) *APIError {
	return &APIError{
		Code:    ErrCodeServiceError,
		Message: message,
		Details: strings.Join(details, ", "),
	}
}

// ledgerStatus groups ledger errors by the HTTP status they surface as
var ledgerStatus = map[error]int{
	domain.ErrNotFound:     http.StatusNotFound,
	domain.ErrUnauthorized: http.StatusForbidden,

	domain.ErrInvalidFundingTarget: http.StatusBadRequest,
	domain.ErrInvalidMilestone:     http.StatusBadRequest,
	domain.ErrInvalidVote:          http.StatusBadRequest,
	domain.ErrInvalidTokenContract: http.StatusBadRequest,
	domain.ErrInsufficientFunds:    http.StatusBadRequest,

	domain.ErrAlreadyInitialized:       http.StatusConflict,
	domain.ErrAlreadyExists:            http.StatusConflict,
	domain.ErrProjectClosed:            http.StatusConflict,
	domain.ErrFundingPeriodEnded:       http.StatusConflict,
	domain.ErrVotingPeriodEnded:        http.StatusConflict,
	domain.ErrAlreadyVoted:             http.StatusConflict,
	domain.ErrNotVoted:                 http.StatusConflict,
	domain.ErrMilestoneAlreadyReleased: http.StatusConflict,
	domain.ErrMilestoneAlreadyApproved: http.StatusConflict,
	domain.ErrMilestoneAlreadyRejected: http.StatusConflict,
	domain.ErrRefundAlreadyProcessed:   http.StatusConflict,
	domain.ErrInvalidOperation:         http.StatusConflict,
	domain.ErrAlreadyWhitelisted:       http.StatusConflict,
	domain.ErrNoBackerContributions:    http.StatusConflict,

	domain.ErrTransferFailed:     http.StatusBadGateway,
	domain.ErrBalanceCheckFailed: http.StatusBadGateway,
	domain.ErrInternalError:      http.StatusInternalServerError,
}

// FromLedgerError converts a ledger error into its HTTP status and body.
// Errors without a ledger code are internal errors.
func FromLedgerError(err error) (int, *APIError) {
	code := domain.ErrorCode(err)
	if code == 0 {
		return http.StatusInternalServerError, NewInternalError("Internal server error")
	}

	kind := domain.ErrorByCode(code)
	status := ledgerStatus[kind]

	apiErr := &APIError{
		Message:    kind.Error(),
		LedgerCode: code,
	}
	if err.Error() != kind.Error() {
		apiErr.Details = err.Error()
	}

	switch status {
	case http.StatusNotFound:
		apiErr.Code = ErrCodeNotFound
	case http.StatusForbidden:
		apiErr.Code = ErrCodeForbidden
	case http.StatusBadRequest:
		apiErr.Code = ErrCodeBadRequest
	case http.StatusConflict:
		apiErr.Code = ErrCodeConflict
	case http.StatusBadGateway:
		apiErr.Code = ErrCodeServiceError
	default:
		status = http.StatusInternalServerError
		apiErr.Code = ErrCodeInternalError
		// storage causes stay in the logs
		apiErr.Details = ""
	}

	return status, apiErr
}
