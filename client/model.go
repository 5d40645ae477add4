package client

import (
	"errors"
	"fmt"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

// execFn represents a func to operate on a response.
type execFn func(response *Response) error

var (
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [UnexpectedStatusError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrAborted is wrapped by [AbortError].
	ErrAborted = errors.New("fetch aborted")
	// ErrUnsupportedProtocol is returned by [Transport] for protocols other
	// than "http:" and "https:".
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	// ErrMalformedResponse is returned when the peer's reply is not a
	// valid HTTP/1.x response.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrUnsupportedEncoding is returned when decoding a body whose
	// Content-Encoding is not gzip, deflate, br, zstd or identity.
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
	// ErrInvalidHeader is returned when a header name or value cannot be
	// written on the wire.
	ErrInvalidHeader = errors.New("invalid header field")
)

// UnexpectedStatusError is returned when the HTTP response status code
// does not match the expected value.
type UnexpectedStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%v: %d, body: %s", e.Err, e.StatusCode, e.Body)
}

func (e *UnexpectedStatusError) Unwrap() error {
	return e.Err
}

// AbortError is returned when a fetch is stopped by its abort signal.
// It matches both [ErrAborted] and the signal's reason with errors.Is.
type AbortError struct {
	Reason error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%v: %v", ErrAborted, e.Reason)
}

func (e *AbortError) Unwrap() []error {
	return []error{ErrAborted, e.Reason}
}
