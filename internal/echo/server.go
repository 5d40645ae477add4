package echo

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server wraps an [http.Server] serving the echo handler.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	tlsCertFile     string
	tlsKeyFile      string
}

const (
	DefaultAddr            = "127.0.0.1:2010"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 2 * time.Minute
	defaultShutdownTimeout = 20 * time.Second
)

// New creates a Server listening on DefaultAddr with the default timeouts
// and slog.Default(), unless overridden via options.
func New(opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := cmp.Or(o.logger, slog.Default())

	return &Server{
		srv: &http.Server{
			Addr:         cmp.Or(o.host, DefaultAddr),
			Handler:      Handler(logger),
			ReadTimeout:  cmp.Or(o.readTimeout, defaultReadTimeout),
			WriteTimeout: cmp.Or(o.writeTimeout, defaultWriteTimeout),
			IdleTimeout:  defaultIdleTimeout,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
		},
		shutdownTimeout: cmp.Or(o.shutdownTimeout, defaultShutdownTimeout),
		logger:          logger,
		tlsCertFile:     o.tlsCertFile,
		tlsKeyFile:      o.tlsKeyFile,
	}
}

// Run listens on the configured host and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. It returns nil on clean shutdown.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("echo server started", "addr", ln.Addr().String(), "tls", s.tlsCertFile != "")

		if s.tlsCertFile == "" {
			serveErr <- s.srv.Serve(ln)
			return
		}
		serveErr <- s.srv.ServeTLS(ln, s.tlsCertFile, s.tlsKeyFile)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving %s: %w", ln.Addr(), err)
		}

		return nil

	case <-ctx.Done():
		s.logger.Info("stopping echo server", "cause", context.Cause(ctx))

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			return err
		}

		s.logger.Info("echo server stopped")

		return nil
	}
}

// Shutdown drains in-flight requests. Callers should set a deadline on
// ctx to bound how long shutdown may take.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		// Drop whatever is still connected.
		_ = s.srv.Close()
		return fmt.Errorf("draining connections: %w", err)
	}

	return nil
}
