package callstack

import "errors"

// ErrCaptureUnavailable indicates the stack walker produced no frames.
var ErrCaptureUnavailable = errors.New("callstack: capture unavailable")

// TracedError is an error carrying the formatted callstack of the point
// where it was created.
type TracedError struct {
	Message string
	Stack   string
}

// Error returns the message followed by the multi-line stack report.
func (e *TracedError) Error() string {
	if e.Stack == "" {
		return e.Message
	}
	return e.Message + "\n" + e.Stack
}

// NewError creates a TracedError capturing the caller's stack. When no
// frames can be captured the returned error wraps ErrCaptureUnavailable.
func NewError(message string) error {
	pcs := Capture(MaxDepth, 1)
	if len(pcs) == 0 {
		return &TracedError{Message: message, Stack: ErrCaptureUnavailable.Error()}
	}
	return &TracedError{Message: message, Stack: Format("", pcs)}
}
