package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/fetch/abort"
	"github.com/adamwoolhether/fetch/client/download"
	"github.com/adamwoolhether/fetch/client/throttle"
	"github.com/adamwoolhether/fetch/weburl"
)

const requestIDHeader = "X-Request-Id"

// Client sends requests through a chain of [RoundTripper] decorators ending
// in a base [Transport], which can be customized via optional funcs.
// It is safe for concurrent use.
type Client struct {
	transport RoundTripper
	logger    *slog.Logger
	tracer    trace.Tracer
	timeout   time.Duration
	requestID bool
}

func Build(optFns ...Option) (*Client, error) {
	client := &Client{
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer(""),
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	if opts.logger != nil {
		client.logger = opts.logger
	}

	if opts.tracer != nil {
		client.tracer = opts.tracer
	}

	if opts.timeout != nil {
		client.timeout = *opts.timeout
	}

	client.requestID = opts.requestID

	var transport RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	default:
		transport = &Transport{
			DialTimeout: opts.dialTimeout,
			TLSConfig:   opts.tlsConfig,
		}
	}
	if opts.acceptEncoding {
		transport = acceptEncoding{base: transport}
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		lim, err := throttle.NewLimiter(opts.throttle.RPS, opts.throttle.Burst, func() *slog.Logger { return client.logger })
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = throttled{limiter: lim, base: transport}
	}
	client.transport = transport

	return client, nil
}

// Fetch sends req and returns once the response status line and headers
// have been read. The caller must close the response body, or consume it
// with [Response.Text] or [Response.Bytes].
//
// If req carries an abort signal that fires before or during the fetch,
// including while the body is being read, the error is an [*AbortError].
func (c *Client) Fetch(req *Request) (*Response, error) {
	if req == nil || req.URL == nil {
		return nil, errors.New("request and its url must not be nil")
	}

	if sig := req.Signal; sig != nil && sig.Aborted() {
		return nil, &AbortError{Reason: sig.Reason()}
	}

	ctx := req.Context()

	var cleanup []func()
	release := func() {
		for _, fn := range slices.Backward(cleanup) {
			fn()
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		cleanup = append(cleanup, cancel)
	}

	if req.Signal != nil {
		var cancel context.CancelFunc
		ctx, cancel = req.Signal.Context(ctx)
		cleanup = append(cleanup, cancel)
	}

	ctx, span := c.startSpan(ctx, req)
	cleanup = append(cleanup, func() { span.End() })

	out := req.Clone(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(out.Header))
	if c.requestID && out.Header.Get(requestIDHeader) == "" {
		out.Header.Set(requestIDHeader, requestID(span))
	}

	start := time.Now()
	c.logger.Info("fetch started", "method", out.Method, "host", out.URL.Host(), "target", out.URL.RequestTarget())

	resp, err := c.transport.RoundTrip(out)
	if err != nil {
		err = abortCause(req.Signal, err)

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		release()

		c.logger.Error("fetch failed", "method", out.Method, "host", out.URL.Host(), "target", out.URL.RequestTarget(), "error", err, "since", time.Since(start).String())

		return nil, fmt.Errorf("fetch: %w", err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Status)
	}

	c.logger.Info("fetch completed", "method", out.Method, "host", out.URL.Host(), "target", out.URL.RequestTarget(), "status", resp.StatusCode, "since", time.Since(start).String())

	resp.Body = &fetchBody{
		ReadCloser: resp.Body,
		signal:     req.Signal,
		release:    release,
	}
	resp.Request = req

	return resp, nil
}

// Do will fire the request, and write response to the given dest object if any.
func (c *Client) Do(req *Request, expCode int, opts ...DoOption) error {
	var settings doOpts
	for _, opt := range opts {
		err := opt(&settings)
		if err != nil {
			return err
		}
	}

	doFunc := func(resp *Response) error {
		if settings.responseBody != nil {
			body, err := resp.decoded()
			if err != nil {
				return fmt.Errorf("decoding content: %w", err)
			}
			defer body.Close()

			d := json.NewDecoder(body)

			if settings.useJSONNum {
				d.UseNumber()
			}

			if err := d.Decode(settings.responseBody); err != nil {
				return fmt.Errorf("decoding body: %w", err)
			}
		}

		return nil
	}

	return c.exec(req, expCode, doFunc)
}

// Download executes a request that's intended to stream the response body to destPath.
// Data streams to a temp file in the same directory, then the temp file is renamed to
// destPath on success or cleared on failure. Compressed bodies are decoded first.
func (c *Client) Download(req *Request, expCode int, destPath string, opts ...download.Option) error {
	if destPath == "" {
		return download.ErrEmptyPath
	}

	dlFunc := func(resp *Response) error {
		body, err := resp.decoded()
		if err != nil {
			return fmt.Errorf("decoding content: %w", err)
		}
		defer body.Close()

		length := resp.ContentLength
		if resp.Header.Get("Content-Encoding") != "" {
			length = -1
		}

		if err := download.Save(req.Context(), body, length, destPath, c.logger, opts...); err != nil {
			return fmt.Errorf("download: %w", err)
		}

		return nil
	}

	return c.exec(req, expCode, dlFunc)
}

// Request instantiates a *Request with the provided information.
// It's just a convenience method that wraps the public NewRequest func.
func (c *Client) Request(ctx context.Context, u *weburl.URL, method string, opts ...RequestOption) (*Request, error) {
	return NewRequest(ctx, u, method, opts...)
}

// URL creates a *weburl.URL for use in Request.
// It's just a convenience method that wraps the public URL func.
func (c *Client) URL(scheme, host, path string, opts ...URLOption) *weburl.URL {
	return URL(scheme, host, path, opts...)
}

// exec runs the request and injected function on success after validating the expected status code.
func (c *Client) exec(req *Request, expCode int, fn execFn) error {
	resp, err := c.Fetch(req)
	if err != nil {
		return fmt.Errorf("exec fetch: %w", err)
	}

	discardBody := true
	defer func() {
		if discardBody {
			if _, err = io.Copy(io.Discard, resp.Body); err != nil {
				c.logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err = resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != expCode {
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize))
		if err != nil {
			b = []byte("unable to read body")
		}

		statusErr := ErrUnexpectedStatusCode
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			statusErr = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
		}

		return &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Body:       string(b),
			Err:        statusErr,
		}
	}

	if err := fn(resp); err != nil {
		discardBody = false
		return fmt.Errorf("exec fn: %w", err)
	}

	return nil
}

// startSpan starts the span covering a fetch, from dialing until the
// response body is closed.
func (c *Client) startSpan(ctx context.Context, req *Request) (context.Context, trace.Span) {
	ctx, span := c.tracer.Start(ctx, "client.fetch", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("server.address", req.URL.Hostname()),
		attribute.String("url.path", req.URL.Pathname()),
	)

	return ctx, span
}

func requestID(span trace.Span) string {
	traceID := span.SpanContext().TraceID()
	if !traceID.IsValid() {
		return uuid.New().String()
	}

	return traceID.String()
}

// abortCause replaces err with an AbortError when sig has fired.
func abortCause(sig *abort.Signal, err error) error {
	if sig != nil && sig.Aborted() {
		return &AbortError{Reason: sig.Reason()}
	}

	return err
}

// fetchBody releases the fetch's context and span once the body is closed,
// and reports reads cut short by the abort signal as an AbortError.
type fetchBody struct {
	io.ReadCloser
	signal  *abort.Signal
	release func()

	once sync.Once
}

func (b *fetchBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = abortCause(b.signal, err)
	}

	return n, err
}

func (b *fetchBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(b.release)

	return err
}
