package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Event routing errors
	ErrCodeUnknownEventKind ErrorCode = "UNKNOWN_EVENT_KIND"

	// Watch errors
	ErrCodeWatchFailed        ErrorCode = "WATCH_FAILED"
	ErrCodeDuplicateWatchName ErrorCode = "DUPLICATE_WATCH_NAME"
	ErrCodeWorkerNotFound     ErrorCode = "WORKER_NOT_FOUND"

	// Output file errors
	ErrCodeLogWrite      ErrorCode = "LOG_WRITE"
	ErrCodeAnalysisWrite ErrorCode = "ANALYSIS_WRITE"

	// General errors
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrCodePermissionDenied ErrorCode = "PERMISSION_DENIED"
)

// LogratError represents a structured error with context
type LogratError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *LogratError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *LogratError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *LogratError) WithDetail(key string, value interface{}) *LogratError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *LogratError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new LogratError
func New(code ErrorCode, message string) *LogratError {
	return &LogratError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a LogratError
func Wrap(err error, code ErrorCode, message string) *LogratError {
	return &LogratError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific LogratError code, looking through
// wrapped errors and LogratError causes.
func Is(err error, code ErrorCode) bool {
	logratErr, ok := As(err)
	for ok {
		if logratErr.Code == code {
			return true
		}
		logratErr, ok = As(logratErr.Cause)
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if logratErr, ok := As(err); ok {
		return logratErr.Code
	}
	return ""
}

// As returns the first LogratError in err's chain.
func As(err error) (*LogratError, bool) {
	if err == nil {
		return nil, false
	}
	var logratErr *LogratError
	if stderrors.As(err, &logratErr) {
		return logratErr, true
	}
	return nil, false
}
