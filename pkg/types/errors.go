package types

import (
	"errors"
	"fmt"
)

// Kind classifies a swap failure
type Kind string

const (
	InvalidInput        Kind = "InvalidInput"
	UnsupportedChain    Kind = "UnsupportedChain"
	InvalidKey          Kind = "InvalidKey"
	RoutingServiceError Kind = "RoutingServiceError"
	MalformedResponse   Kind = "MalformedResponse"
	ApprovalFailed      Kind = "ApprovalFailed"
	SwapFailed          Kind = "SwapFailed"
	TransportError      Kind = "TransportError"
)

// Sentinels for errors.Is checks against a kind.
var (
	ErrInvalidInput      = &Error{Kind: InvalidInput}
	ErrUnsupportedChain  = &Error{Kind: UnsupportedChain}
	ErrInvalidKey        = &Error{Kind: InvalidKey}
	ErrRoutingService    = &Error{Kind: RoutingServiceError}
	ErrMalformedResponse = &Error{Kind: MalformedResponse}
	ErrApprovalFailed    = &Error{Kind: ApprovalFailed}
	ErrSwapFailed        = &Error{Kind: SwapFailed}
	ErrTransport         = &Error{Kind: TransportError}
)

// Error is a classified swap failure. Every failure is terminal for the run.
type Error struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

// NewError creates a classified error
func NewError(kind Kind, op, detail string, err error) *Error {
	return &Error{Kind: kind, Op: op, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg += " (" + e.Op + ")"
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or an empty kind if err is not classified
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Errorf is a shorthand for NewError with a formatted detail
func Errorf(kind Kind, op string, err error, format string, args ...interface{}) *Error {
	return NewError(kind, op, fmt.Sprintf(format, args...), err)
}
