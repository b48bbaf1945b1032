// Package apperrors provides the application error type used across the
// service. Errors form chains: a package defines a small tree of sentinel
// errors derived from a base, and call sites refine them with messages or
// wrapped causes. errors.Is works against any ancestor in the chain, and
// every error carries an HTTP status code for the transport layer.
package apperrors

// Error is the interface implemented by all application errors. It extends
// the standard error interface with chaining and status code management.
// Methods return Error so derivations can be spelled inline.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // derive a new sentinel from this one
	Msg(msg string) Error                  // new error with message, wrapping this one
	MsgErr(msg string, err ...error) Error // new error with message and extra causes
	Err(err ...error) Error                // attach causes, keeping the message
	SetExpandError(bool) Error             // whether ErrorAll includes wrapped causes
	SetStatusCode(int) Error               // HTTP status code for the error
	StatusCode() int                       // current status code
	ErrorAll() string                      // message including wrapped causes
	UnwrapAll() []error                    // all wrapped causes
}
