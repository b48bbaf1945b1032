package apperrors

import (
	"errors"
	"strings"
)

// appError is the concrete implementation behind Error.
type appError struct {
	msg        string  // primary message
	base       error   // parent in the derivation chain
	wrapped    []error // attached causes
	statuscode int     // HTTP status code
	expand     bool    // whether ErrorAll includes causes
}

// New creates a root-level error with the given message. Packages call this
// once for their base sentinel and derive the rest from it.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	return e.msg
}

// ErrorAll returns the message followed by all wrapped causes when expansion
// is enabled; otherwise it is equivalent to Error().
func (e *appError) ErrorAll() string {
	if !e.expand {
		return e.msg
	}
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.wrapped {
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.wrapped
}

// New derives a fresh sentinel. The derived error inherits the status code
// and treats the receiver as its parent for errors.Is.
func (e *appError) New(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		statuscode: e.statuscode,
	}
}

// Msg creates a new error with a different message that wraps the receiver.
func (e *appError) Msg(msg string) Error {
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    append([]error{e}, e.wrapped...),
		statuscode: e.statuscode,
	}
}

// MsgErr creates a new error with a message and additional wrapped causes.
func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:        msg,
		base:       e,
		wrapped:    append([]error{e}, errs...),
		statuscode: e.statuscode,
	}
}

// Err attaches causes to the receiver, keeping its message.
func (e *appError) Err(errs ...error) Error {
	return &appError{
		msg:        e.msg,
		base:       e,
		wrapped:    append([]error{e}, errs...),
		statuscode: e.statuscode,
	}
}

// SetExpandError returns a copy with the expansion flag updated.
func (e *appError) SetExpandError(flag bool) Error {
	cp := *e
	cp.expand = flag
	return &cp
}

// SetStatusCode returns a copy with the status code updated.
func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statuscode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statuscode
}

// Is reports whether target matches this error, its parent chain, or any
// attached cause.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrapped {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
