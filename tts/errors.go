package tts

import "errors"

// Common errors for the gateway core.
var (
	// Resolution errors
	ErrVoiceNotResolved = errors.New("voice cannot be resolved to a registered engine")
	ErrUnknownEngine    = errors.New("engine is not registered")

	// Synthesis errors
	ErrSynthesisFailed = errors.New("engine failed to produce audio")
	ErrEmptyAudio      = errors.New("engine returned no audio")
	ErrVoiceNotFound   = errors.New("requested voice not found")
	ErrEmptyText       = errors.New("no text to synthesize")
	ErrEngineShutdown  = errors.New("engine has been shut down")

	// Configuration errors
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrEngineUnavailable = errors.New("engine binary or model directory not available")

	// General errors
	ErrTimeout  = errors.New("operation timed out")
	ErrCanceled = errors.New("operation was canceled")
)

// ErrorSeverity represents the severity of an error.
type ErrorSeverity int

const (
	// SeverityWarning is for errors that don't prevent the request.
	SeverityWarning ErrorSeverity = iota
	// SeverityError is for errors that fail the request.
	SeverityError
	// SeverityCritical is for errors that require operator attention.
	SeverityCritical
)

// Error provides detailed error information for engine and pipeline
// failures. It wraps an underlying sentinel so callers can use errors.Is.
type Error struct {
	Err       error          // the underlying error
	Component string         // component that generated the error
	Action    string         // action being performed when the error occurred
	Severity  ErrorSeverity  // severity of the error
	Context   map[string]any // additional context
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown synthesis error"
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new gateway error with context.
func NewError(err error, component, action string) *Error {
	return &Error{
		Err:       err,
		Component: component,
		Action:    action,
		Severity:  SeverityError,
		Context:   make(map[string]any),
	}
}

// WithSeverity sets the error severity.
func (e *Error) WithSeverity(severity ErrorSeverity) *Error {
	e.Severity = severity
	return e
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
