// Package errors provides the standardized error model shared by the
// verification workers, the CLI and the job error handler.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Transport errors: the backend could not be reached or answered non-2xx.
const (
	ErrCodeBackendUnavailable ErrorCode = "BACKEND_UNAVAILABLE"
	ErrCodeBackendStatus      ErrorCode = "BACKEND_STATUS"
	ErrCodeBackendTimeout     ErrorCode = "BACKEND_TIMEOUT"
)

// Decode errors: the backend answered but the payload was corrupt.
const (
	ErrCodePayloadDecodeFailed ErrorCode = "PAYLOAD_DECODE_FAILED"
)

// Enrichment errors never leave the enrichment routine; the code exists for
// logging and metrics only.
const (
	ErrCodeEnrichmentFailed ErrorCode = "ENRICHMENT_FAILED"
)

// Input-shape and flow errors.
const (
	ErrCodeUnsupportedImageSource ErrorCode = "UNSUPPORTED_IMAGE_SOURCE"
	ErrCodeImageLoadFailed        ErrorCode = "IMAGE_LOAD_FAILED"
	ErrCodeImageEncodeFailed      ErrorCode = "IMAGE_ENCODE_FAILED"
	ErrCodeTextExtractionFailed   ErrorCode = "TEXT_EXTRACTION_FAILED"
	ErrCodeExtractionFailed       ErrorCode = "EXTRACTION_FAILED"
	ErrCodeInvalidInput           ErrorCode = "INVALID_INPUT"
	ErrCodeSessionRequired        ErrorCode = "SESSION_REQUIRED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Details)
	}
	return e.Message
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError with the same code, so errors.Is can look for
// a code through wrapped causes.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	return ok && t.Code != "" && t.Code == e.Code
}

// Reason returns the enrichment failure reason, or "".
func (e *StandardError) Reason() string {
	reason, _ := e.Metadata["reason"].(string)
	return reason
}

// StatusCode returns the HTTP status carried in Metadata, or 0.
func (e *StandardError) StatusCode() int {
	if e.Metadata == nil {
		return 0
	}
	if code, ok := e.Metadata["statusCode"].(int); ok {
		return code
	}
	return 0
}

// BPMNError represents an error that can be thrown to the workflow engine.
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

// ToErrorVariables returns a map suitable for job failure variables.
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

func newError(code ErrorCode, message string, cause error) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewBackendUnavailableError wraps a network-level failure.
func NewBackendUnavailableError(endpoint string, err error) *StandardError {
	e := newError(ErrCodeBackendUnavailable, "Backend unreachable", err)
	e.Metadata = map[string]interface{}{"endpoint": endpoint}
	return e
}

// NewBackendStatusError reports a non-2xx response.
func NewBackendStatusError(endpoint string, statusCode int, err error) *StandardError {
	e := newError(ErrCodeBackendStatus, fmt.Sprintf("error: %d", statusCode), err)
	e.Metadata = map[string]interface{}{
		"endpoint":   endpoint,
		"statusCode": statusCode,
	}
	return e
}

// NewBackendTimeoutError reports an exceeded deadline.
func NewBackendTimeoutError(endpoint string, err error) *StandardError {
	e := newError(ErrCodeBackendTimeout, "Backend request timed out", err)
	e.Metadata = map[string]interface{}{"endpoint": endpoint}
	return e
}

// NewPayloadDecodeError reports a corrupt envelope or nested payload.
func NewPayloadDecodeError(endpoint string, err error) *StandardError {
	e := newError(ErrCodePayloadDecodeFailed, "Failed to parse", err)
	e.Metadata = map[string]interface{}{"endpoint": endpoint}
	return e
}

// NewEnrichmentFailedError describes a swallowed alternatives failure.
func NewEnrichmentFailedError(reason string, err error) *StandardError {
	e := newError(ErrCodeEnrichmentFailed, "Alternatives unavailable", err)
	e.Metadata = map[string]interface{}{"reason": reason}
	return e
}

// NewUnsupportedImageSourceError rejects image references that are neither
// blob: nor data: URIs.
func NewUnsupportedImageSourceError(source string) *StandardError {
	e := newError(ErrCodeUnsupportedImageSource, "Unsupported image format", nil)
	e.Details = truncate(source, 48)
	return e
}

func NewImageLoadFailedError(err error) *StandardError {
	return newError(ErrCodeImageLoadFailed, "Failed to load image", err)
}

func NewImageEncodeFailedError(err error) *StandardError {
	return newError(ErrCodeImageEncodeFailed, "Could not encode cropped image", err)
}

func NewTextExtractionFailedError(details string) *StandardError {
	e := newError(ErrCodeTextExtractionFailed, "Error extracting text", nil)
	e.Details = details
	return e
}

func NewExtractionFailedError(details string) *StandardError {
	e := newError(ErrCodeExtractionFailed, "Failed to extract data from URL", nil)
	e.Details = details
	return e
}

func NewInvalidInputError(message string) *StandardError {
	return newError(ErrCodeInvalidInput, message, nil)
}

func NewSessionRequiredError() *StandardError {
	return newError(ErrCodeSessionRequired, "Sign in to continue", nil)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err)
}

// AsStandard extracts a *StandardError from a wrapped chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &StandardError{Code: code})
}

// GetRetryCount returns the automatic retry budget for a code. Every
// verification failure is surfaced on first occurrence; retries are
// user-initiated resubmissions.
func GetRetryCount(code ErrorCode) int {
	return 0
}

// ConvertToBPMNError maps a StandardError onto the workflow error contract.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmn := &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   GetRetryCount(stdErr.Code),
	}
	if len(stdErr.Metadata) > 0 {
		bpmn.ErrorVariables = map[string]interface{}{}
		for k, v := range stdErr.Metadata {
			bpmn.ErrorVariables[k] = v
		}
	}
	return bpmn
}

// GetErrorCategory groups codes for logging.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeBackendUnavailable, ErrCodeBackendStatus, ErrCodeBackendTimeout:
		return "transport"
	case ErrCodePayloadDecodeFailed:
		return "decode"
	case ErrCodeEnrichmentFailed:
		return "enrichment"
	case ErrCodeUnsupportedImageSource, ErrCodeInvalidInput, ErrCodeImageLoadFailed:
		return "input"
	case ErrCodeSessionRequired:
		return "auth"
	default:
		return "flow"
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
