package style

import (
	"errors"
	"fmt"
)

// Kind classifies a failed editor operation.
type Kind string

const (
	KindUnknownLayer             Kind = "UnknownLayer"
	KindInvalidProperty          Kind = "InvalidProperty"
	KindInvalidDocument          Kind = "InvalidDocument"
	KindMissingCoordinateColumns Kind = "MissingCoordinateColumns"
	KindFetchFailure             Kind = "FetchFailure"
	KindRendererRejected         Kind = "RendererRejected"
	KindInvalidSetting           Kind = "InvalidSetting"
	KindUnknownVersion           Kind = "UnknownVersion"
	KindProtectedLayer           Kind = "ProtectedLayer"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrUnknownLayer             = &Error{Kind: KindUnknownLayer}
	ErrInvalidProperty          = &Error{Kind: KindInvalidProperty}
	ErrInvalidDocument          = &Error{Kind: KindInvalidDocument}
	ErrMissingCoordinateColumns = &Error{Kind: KindMissingCoordinateColumns}
	ErrFetchFailure             = &Error{Kind: KindFetchFailure}
	ErrRendererRejected         = &Error{Kind: KindRendererRejected}
	ErrInvalidSetting           = &Error{Kind: KindInvalidSetting}
	ErrUnknownVersion           = &Error{Kind: KindUnknownVersion}
	ErrProtectedLayer           = &Error{Kind: KindProtectedLayer}
)

// Error carries the failure kind alongside the operation that produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Errorf builds an *Error with a formatted cause.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap builds an *Error around err. A nil err yields nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "mapstyle"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	msg += ": " + string(e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports kind equality so callers can test against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}
