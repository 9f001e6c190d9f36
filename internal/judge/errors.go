package judge

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/blindcode/internal/model"
)

// Kind classifies gateway failures.
type Kind int

// Gateway failure kinds.
const (
	KindConfiguration Kind = iota + 1
	KindTransport
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// User-facing messages.
const (
	MsgMissingAPIKey  = "Server configuration error: API key missing."
	MsgUnexpected     = "An unexpected error occurred while running your code."
	CompilationPrefix = "Compilation Error:\n"
)

// Error is a gateway failure. It never escapes Execute; it is folded into an Outcome.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a gateway Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func configError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func transportError(msg string, err error) *Error {
	if msg == "" {
		msg = MsgUnexpected
	}
	return &Error{Kind: KindTransport, Message: msg, Err: err}
}

func timeoutError(msg string, err error) *Error {
	return &Error{Kind: KindTimeout, Message: msg, Err: err}
}

func (e *Error) failure() model.FailureKind {
	switch e.Kind {
	case KindConfiguration:
		return model.FailureConfiguration
	case KindTimeout:
		return model.FailureTimeout
	default:
		return model.FailureTransport
	}
}

func (e *Error) outcome() model.Outcome {
	return model.Outcome{Error: e.Message, Failure: e.failure()}
}
