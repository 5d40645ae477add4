package client

import (
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vfaronov/httpheader"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/fetch/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error
type options struct {
	rt             RoundTripper
	tlsConfig      *tls.Config
	dialTimeout    time.Duration
	timeout        *time.Duration
	userAgent      string
	throttle       *throttle.Config
	acceptEncoding bool
	requestID      bool
	logger         *slog.Logger
	tracer         trace.Tracer
}

// WithTransport replaces the default [Transport] as the base of the
// transport chain.
func WithTransport(rt RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTLSConfig sets the TLS configuration of the default [Transport].
// It has no effect together with WithTransport.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *options) error {
		if cfg == nil {
			return errors.New("tls config must not be nil")
		}
		c.tlsConfig = cfg
		return nil
	}
}

// WithDialTimeout bounds connection establishment in the default [Transport].
func WithDialTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("dial timeout must not be negative")
		}
		c.dialTimeout = d
		return nil
	}
}

// WithTimeout bounds each fetch, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithProducts is like WithUserAgent but builds the header from product
// tokens, e.g. {Name: "fetch", Version: "1.0"}.
func WithProducts(products ...httpheader.Product) Option {
	return func(c *options) error {
		if len(products) == 0 {
			return errors.New("at least one product is required")
		}

		h := make(http.Header)
		httpheader.SetUserAgent(h, products)
		c.userAgent = h.Get("User-Agent")
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		if rps <= 0 || burst <= 0 {
			return fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, throttle.ErrMustNotBeZero)
		}
		c.throttle = &throttle.Config{RPS: rps, Burst: burst}
		return nil
	}
}

// WithCompression advertises the content codings the client can decode
// (br, zstd, gzip, deflate) on requests that set no Accept-Encoding.
func WithCompression() Option {
	return func(c *options) error {
		c.acceptEncoding = true
		return nil
	}
}

// WithRequestID stamps each request with an X-Request-Id header carrying
// the trace id of its span, or a random UUID when no trace is recording.
func WithRequestID() Option {
	return func(c *options) error {
		c.requestID = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithTracer sets the tracer used to start a span per fetch. The span
// context is injected into the request headers through the global
// propagator.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// userAgent is a RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  RoundTripper
}

func (ua userAgent) RoundTrip(r *Request) (*Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

const supportedEncodings = "br, zstd, gzip, deflate"

// acceptEncoding is a RoundTripper advertising the decodable codings.
type acceptEncoding struct {
	base RoundTripper
}

func (ae acceptEncoding) RoundTrip(r *Request) (*Response, error) {
	if r.Header.Get("Accept-Encoding") != "" {
		return ae.base.RoundTrip(r)
	}

	cpy := r.Clone(r.Context())
	cpy.Header.Set("Accept-Encoding", supportedEncodings)
	return ae.base.RoundTrip(cpy)
}

// throttled is a RoundTripper waiting on the limiter before each request.
type throttled struct {
	limiter *throttle.Limiter
	base    RoundTripper
}

func (t throttled) RoundTrip(r *Request) (*Response, error) {
	if err := t.limiter.Wait(r.Context(), r.URL.RequestTarget()); err != nil {
		return nil, err
	}

	return t.base.RoundTrip(r)
}

// DoOption is a functional option for [Client.Do].
type DoOption func(options *doOpts) error

type doOpts struct {
	responseBody any
	useJSONNum   bool
}

// WithDestination decodes the JSON response body into bodyTemplate.
// bodyTemplate must be a pointer.
func WithDestination[T any](bodyTemplate *T) DoOption {
	return func(opts *doOpts) error {
		opts.responseBody = bodyTemplate

		return nil
	}
}

// WithJSONNumb tells the JSON decoder to use UseNumber, preserving number
// precision as json.Number instead of float64.
func WithJSONNumb() DoOption {
	return func(opts *doOpts) error {
		opts.useJSONNum = true

		return nil
	}
}
