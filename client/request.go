package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/adamwoolhether/fetch/abort"
	"github.com/adamwoolhether/fetch/weburl"
)

// Request is a single fetch: a method, a target URL, headers and an
// optional body. Build one with [NewRequest].
type Request struct {
	Method string
	URL    *weburl.URL
	Header http.Header
	Body   []byte

	// Signal, when set, aborts the fetch as soon as it fires.
	Signal *abort.Signal

	ctx context.Context
}

// Context returns the request's context, or context.Background if none
// was set.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}

	return r.ctx
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	cpy := *r
	cpy.ctx = ctx

	return &cpy
}

// Clone returns a deep copy of r with its context changed to ctx.
func (r *Request) Clone(ctx context.Context) *Request {
	cpy := *r
	cpy.ctx = ctx
	cpy.URL = r.URL.Clone()
	cpy.Header = r.Header.Clone()
	if cpy.Header == nil {
		cpy.Header = make(http.Header)
	}
	cpy.Body = bytes.Clone(r.Body)

	return &cpy
}

// NewRequest instantiates a *Request with the provided information. u is
// cloned, so later changes to it do not affect the request.
//
// The method must be one of GET, POST, PUT, DELETE, PATCH, HEAD or OPTIONS,
// the URL must name a host, its port (when present) must be numeric and
// its pathname must start with '/'. Violations are reported as
// [FieldErrors].
//
// Content-Type defaults to `application/json` when the body is set via
// WithPayload; raw bodies set with WithBody carry no Content-Type unless
// WithContentType is given.
func NewRequest(ctx context.Context, u *weburl.URL, method string, opts ...RequestOption) (*Request, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	if u == nil {
		return nil, errors.New("url must not be nil")
	}

	var settings requestOpts
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return nil, err
		}
	}

	if err := validateRequestLine(method, u); err != nil {
		return nil, fmt.Errorf("validating request: %w", err)
	}

	req := &Request{
		Method: method,
		URL:    u.Clone(),
		Header: make(http.Header),
		Signal: settings.signal,
		ctx:    ctx,
	}

	for k, v := range settings.headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	if len(settings.cookies) > 0 {
		pairs := make([]string, len(settings.cookies))
		for i, c := range settings.cookies {
			pairs[i] = c.Name + "=" + c.Value
		}
		req.Header.Set("Cookie", strings.Join(pairs, "; "))
	}

	switch {
	case settings.payload != nil:
		b, err := json.Marshal(settings.payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request payload: %w", err)
		}
		req.Body = b
		req.Header.Set("Content-Type", "application/json")
	case settings.body != nil:
		req.Body = settings.body
	}

	if settings.contentType != nil {
		req.Header.Set("Content-Type", *settings.contentType)
	}

	return req, nil
}

// RequestOption is a functional option for [NewRequest].
type RequestOption func(options *requestOpts) error

type requestOpts struct {
	payload     any
	body        []byte
	contentType *string
	cookies     []*http.Cookie
	headers     map[string][]string
	signal      *abort.Signal
}

// WithPayload sets the JSON-encoded request body.
func WithPayload(body any) RequestOption {
	return func(opts *requestOpts) error {
		if body == nil {
			return errors.New("payload must not be nil")
		}

		opts.payload = body

		return nil
	}
}

// WithBody sets a raw request body, sent verbatim.
func WithBody(body []byte) RequestOption {
	return func(opts *requestOpts) error {
		if body == nil {
			body = []byte{}
		}

		opts.body = body

		return nil
	}
}

// WithContentType sets the Content-Type header, overriding the
// "application/json" default applied to payloads.
func WithContentType(contentType string) RequestOption {
	return func(opts *requestOpts) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}

		opts.contentType = &contentType

		return nil
	}
}

// WithHeaders adds custom headers to the outgoing request.
func WithHeaders(headers map[string][]string) RequestOption {
	return func(opts *requestOpts) error {
		opts.headers = headers

		return nil
	}
}

// WithCookies attaches the given cookies to the outgoing request.
func WithCookies(cookies ...*http.Cookie) RequestOption {
	return func(opts *requestOpts) error {
		opts.cookies = cookies

		return nil
	}
}

// WithSignal ties the request to an abort signal.
func WithSignal(signal *abort.Signal) RequestOption {
	return func(opts *requestOpts) error {
		if signal == nil {
			return errors.New("signal must not be nil")
		}

		opts.signal = signal

		return nil
	}
}

// URL creates a *weburl.URL for use in NewRequest. scheme is given without
// its trailing colon. Query strings are added in key order.
func URL(scheme, host, path string, opts ...URLOption) *weburl.URL {
	var settings urlOpts
	for _, opt := range opts {
		opt(&settings)
	}

	u := weburl.New("")
	u.SetProtocol(scheme + ":")
	u.SetHostname(host)

	if settings.port != nil {
		u.SetPort(strconv.Itoa(*settings.port))
	}

	if path != "" {
		u.SetPathname(path)
	}

	for _, k := range slices.Sorted(maps.Keys(settings.queryStrings)) {
		u.SearchParams().Set(k, settings.queryStrings[k])
	}

	return u
}

// URLOption is a functional option for [URL].
type URLOption func(options *urlOpts)

type urlOpts struct {
	queryStrings map[string]string
	port         *int
}

// WithQueryStrings appends query parameters to the URL.
func WithQueryStrings(queryKV map[string]string) URLOption {
	return func(opts *urlOpts) {
		opts.queryStrings = queryKV
	}
}

// WithPort sets the port number on the URL's host.
func WithPort(port int) URLOption {
	return func(opts *urlOpts) {
		opts.port = &port
	}
}
