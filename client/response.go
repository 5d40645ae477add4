package client

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vfaronov/httpheader"
	"golang.org/x/net/html/charset"
)

// Response is the reply to a fetch. Body streams the payload exactly as
// received; Text and Bytes undo its Content-Encoding and convert it to
// UTF-8.
type Response struct {
	Status        string // e.g. "200 OK"
	StatusCode    int    // e.g. 200
	Proto         string // e.g. "HTTP/1.1"
	Header        http.Header
	ContentLength int64 // -1 when unknown

	// Body must be closed by the caller unless it is consumed via Text
	// or Bytes.
	Body io.ReadCloser

	// Request is the request that produced this response.
	Request *Request
}

// OK reports whether the status code is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Text reads the rest of the body and returns it as a UTF-8 string. The
// body is closed.
func (r *Response) Text() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Bytes reads the rest of the body, removes any Content-Encoding and
// converts the result to UTF-8 using the charset named (or sniffed) from
// Content-Type. The body is closed.
func (r *Response) Bytes() ([]byte, error) {
	defer r.Body.Close()

	body, err := r.decoded()
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var rd io.Reader = body
	if contentType := r.Header.Get("Content-Type"); contentType != "" {
		// An unknown charset label leaves the bytes as they are.
		if cr, err := charset.NewReader(rd, contentType); err == nil {
			rd = cr
		}
	}

	b, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return b, nil
}

// decoded returns the body with its Content-Encoding removed. Closing the
// returned reader releases the decoders, not the body.
func (r *Response) decoded() (io.ReadCloser, error) {
	return decodeContent(r.Body, r.Header.Values("Content-Encoding"))
}

// Server returns the products listed in the Server header.
func (r *Response) Server() []httpheader.Product {
	return httpheader.Server(r.Header)
}

// RetryAfter returns the time given by the Retry-After header, or the
// zero time if there is none.
func (r *Response) RetryAfter() time.Time {
	return httpheader.RetryAfter(r.Header)
}

// Allow returns the methods listed in the Allow header.
func (r *Response) Allow() []string {
	return httpheader.Allow(r.Header)
}

// Challenges returns the authentication challenges listed in the
// WWW-Authenticate header.
func (r *Response) Challenges() []httpheader.Auth {
	return httpheader.WWWAuthenticate(r.Header)
}
