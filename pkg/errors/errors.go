package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeUnsupportedPlatform means a URL matched no known platform
	ErrorTypeUnsupportedPlatform ErrorType = "unsupported_platform"
	// ErrorTypeMissingField means a required field was absent after all selector fallbacks
	ErrorTypeMissingField ErrorType = "missing_field"
	// ErrorTypePriceParse means price text could not be normalized
	ErrorTypePriceParse ErrorType = "price_parse"
	// ErrorTypeNotFound means a referenced product or alert is absent
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict means a duplicate tracked URL or duplicate alert tuple
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeUpstreamBlocked means the platform is refusing requests for a window
	ErrorTypeUpstreamBlocked ErrorType = "upstream_blocked"
	// ErrorTypeTimeout means navigation or an element wait exceeded its bound
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeNotification means alert delivery failed (never fatal to callers)
	ErrorTypeNotification ErrorType = "notification"
)

// TrackerError is the error carried across the scrape/match/reconcile pipeline
type TrackerError struct {
	Type     ErrorType
	Platform string
	Field    string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *TrackerError) Error() string {
	switch {
	case e.Err != nil && e.Platform != "":
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Platform, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("[%s] %s - %v", e.Type, e.Message, e.Err)
	case e.Platform != "":
		return fmt.Sprintf("[%s] %s: %s", e.Type, e.Platform, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Type, e.Message)
	}
}

// Unwrap returns the underlying error
func (e *TrackerError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if a scheduled job may succeed by simply firing again
func (e *TrackerError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTimeout, ErrorTypeUpstreamBlocked, ErrorTypeMissingField, ErrorTypePriceParse:
		return true
	default:
		return false
	}
}

// New creates a new TrackerError
func New(errType ErrorType, platform, message string, err error) *TrackerError {
	return &TrackerError{
		Type:     errType,
		Platform: platform,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewUnsupportedPlatform creates an error for a URL that matches no known platform
func NewUnsupportedPlatform(url string) *TrackerError {
	return New(ErrorTypeUnsupportedPlatform, "", fmt.Sprintf("no known platform for url %q", url), nil)
}

// NewMissingField creates an error for a required field with all candidates exhausted
func NewMissingField(platform, field string) *TrackerError {
	e := New(ErrorTypeMissingField, platform, fmt.Sprintf("required field %q not found", field), nil)
	e.Field = field
	return e
}

// NewPriceParse creates an error for unparseable price text
func NewPriceParse(platform, text string) *TrackerError {
	return New(ErrorTypePriceParse, platform, fmt.Sprintf("could not extract price from %q", text), nil)
}

// NewNotFound creates an error for an absent entity
func NewNotFound(entity, id string) *TrackerError {
	return New(ErrorTypeNotFound, "", fmt.Sprintf("%s %s not found", entity, id), nil)
}

// NewConflict creates an error for a duplicate tracked URL or alert tuple
func NewConflict(message string) *TrackerError {
	return New(ErrorTypeConflict, "", message, nil)
}

// NewUpstreamBlocked creates an error for a platform inside its block window
func NewUpstreamBlocked(platform string, window time.Duration) *TrackerError {
	return New(ErrorTypeUpstreamBlocked, platform, fmt.Sprintf("blocked for %v", window), nil)
}

// NewTimeout creates an error for a navigation or element wait that exceeded its bound
func NewTimeout(platform, op string, err error) *TrackerError {
	return New(ErrorTypeTimeout, platform, op+" timed out", err)
}

// NewNotification creates a non-fatal delivery error
func NewNotification(message string, err error) *TrackerError {
	return New(ErrorTypeNotification, "", message, err)
}

// TypeOf returns the ErrorType of err, or an empty type for untyped errors
func TypeOf(err error) ErrorType {
	var te *TrackerError
	if stderrors.As(err, &te) {
		return te.Type
	}
	return ""
}

// Is reports whether err carries the given ErrorType
func Is(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return Is(err, ErrorTypeNotFound)
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return Is(err, ErrorTypeConflict)
}

// IsTimeout reports whether err is a timeout error
func IsTimeout(err error) bool {
	return Is(err, ErrorTypeTimeout)
}
