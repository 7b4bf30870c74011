package keyinfo

import (
	"fmt"

	"gocloud.dev/gcerrors"
)

// Error is the error type returned by every operation in this package. It
// names the failing operation and carries a gocloud.dev error code so
// callers can classify failures without string matching.
type Error struct {
	Op      string
	Message string
	Code    gcerrors.ErrorCode
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, code gcerrors.ErrorCode, message string) *Error {
	return &Error{Op: op, Message: message, Code: code}
}

func wrapError(op string, code gcerrors.ErrorCode, message string, err error) *Error {
	return &Error{Op: op, Message: message, Code: code, Err: err}
}

// ErrorCode reports the gcerrors.ErrorCode carried by err, or gcerrors.Unknown
// if err is not one of ours.
func ErrorCode(err error) gcerrors.ErrorCode {
	if kerr, ok := err.(*Error); ok {
		return kerr.Code
	}
	return gcerrors.Unknown
}

// ErrorSink receives structured error reports as a pass runs. The core never
// writes to a logger directly; callers that want these reported wire in
// their own sink (e.g. one backed by log/slog).
type ErrorSink interface {
	Report(op, context string, err error)
}

type nopErrorSink struct{}

func (nopErrorSink) Report(string, string, error) {}

// NopErrorSink is an ErrorSink that discards every report.
var NopErrorSink ErrorSink = nopErrorSink{}
