package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/vfaronov/httpheader"
	"golang.org/x/net/http/httpguts"
)

// RoundTripper executes a single fetch. Implementations must not modify
// req; decorators clone it first.
type RoundTripper interface {
	RoundTrip(req *Request) (*Response, error)
}

// RoundTripperFunc adapts an ordinary function to a [RoundTripper].
type RoundTripperFunc func(req *Request) (*Response, error)

func (f RoundTripperFunc) RoundTrip(req *Request) (*Response, error) {
	return f(req)
}

var defaultPorts = map[string]string{
	"http:":  "80",
	"https:": "443",
}

// Transport is the base [RoundTripper]. It dials a new connection per
// request, upgrading to TLS for "https:", writes an HTTP/1.1 request and
// reads the response head. The connection closes with the response body.
type Transport struct {
	// DialTimeout bounds connection establishment. Zero leaves it to the
	// request context.
	DialTimeout time.Duration

	// TLSConfig is used for "https:" URLs. When nil, or when its
	// ServerName is empty, the URL hostname is used as the server name.
	TLSConfig *tls.Config
}

// RoundTrip implements [RoundTripper].
func (t *Transport) RoundTrip(req *Request) (*Response, error) {
	ctx := req.Context()
	u := req.URL

	defaultPort, ok := defaultPorts[u.Protocol()]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, u.Protocol())
	}

	var wire bufferedRequest
	if err := wire.encode(req); err != nil {
		return nil, err
	}

	port, ok := u.Port()
	if !ok || port == "" {
		port = defaultPort
	}
	addr := net.JoinHostPort(u.Hostname(), port)

	d := net.Dialer{Timeout: t.DialTimeout}
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	conn := raw

	// Closing the socket unblocks any pending handshake, write or read.
	stop := context.AfterFunc(ctx, func() {
		_ = raw.Close()
	})

	fail := func(err error) (*Response, error) {
		stop()
		_ = raw.Close()

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", context.Cause(ctx), err)
		}
		return nil, err
	}

	if u.Protocol() == "https:" {
		tlsConn := tls.Client(conn, t.tlsConfig(u.Hostname()))
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return fail(fmt.Errorf("tls handshake: %w", err))
		}
		conn = tlsConn
	}

	if _, err := conn.Write(wire.Bytes()); err != nil {
		return fail(fmt.Errorf("writing request: %w", err))
	}

	hr, err := http.ReadResponse(bufio.NewReader(conn), &http.Request{Method: req.Method})
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrMalformedResponse, err))
	}

	resp := Response{
		Status:        hr.Status,
		StatusCode:    hr.StatusCode,
		Proto:         hr.Proto,
		Header:        hr.Header,
		ContentLength: hr.ContentLength,
		Body: &connBody{
			Reader: hr.Body,
			conn:   conn,
			stop:   stop,
		},
		Request: req,
	}

	return &resp, nil
}

func (t *Transport) tlsConfig(hostname string) *tls.Config {
	var cfg *tls.Config
	if t.TLSConfig != nil {
		cfg = t.TLSConfig.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if cfg.ServerName == "" {
		cfg.ServerName = hostname
	}

	return cfg
}

// bufferedRequest holds the serialized request head and body.
type bufferedRequest struct {
	buf []byte
}

func (b *bufferedRequest) Bytes() []byte {
	return b.buf
}

// encode writes the request line, the Host header, the remaining headers
// sorted by name, a blank line and the body.
func (b *bufferedRequest) encode(req *Request) error {
	u := req.URL

	header := req.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Del("Host")

	if req.Body != nil || methodHasBody(req.Method) {
		header.Set("Content-Length", strconv.Itoa(len(req.Body)))
	}

	if header.Get("Connection") == "" {
		header.Set("Connection", "close")
	}

	if _, ok := header["Authorization"]; !ok {
		if username, ok := u.Username(); ok {
			password, _ := u.Password()
			httpheader.SetAuthorization(header, httpheader.Auth{
				Scheme: "Basic",
				Token:  base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
			})
		}
	}

	b.buf = fmt.Appendf(b.buf, "%s %s HTTP/1.1\r\n", req.Method, u.RequestTarget())
	b.buf = fmt.Appendf(b.buf, "Host: %s\r\n", u.Host())

	for _, name := range slices.Sorted(maps.Keys(header)) {
		if !httpguts.ValidHeaderFieldName(name) {
			return fmt.Errorf("%w: name %q", ErrInvalidHeader, name)
		}

		for _, value := range header[name] {
			if !httpguts.ValidHeaderFieldValue(value) {
				return fmt.Errorf("%w: value for %q", ErrInvalidHeader, name)
			}
			b.buf = fmt.Appendf(b.buf, "%s: %s\r\n", name, value)
		}
	}

	b.buf = append(b.buf, "\r\n"...)
	b.buf = append(b.buf, req.Body...)

	return nil
}

func methodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// connBody reads the response body straight from the connection. The
// connection is never reused, so Close drops it without draining.
type connBody struct {
	io.Reader
	conn net.Conn
	stop func() bool

	once sync.Once
}

func (b *connBody) Close() error {
	b.once.Do(func() {
		b.stop()
		_ = b.conn.Close()
	})

	return nil
}
