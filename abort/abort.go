package abort

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAborted is the reason recorded when Abort is called with a nil reason.
	ErrAborted = errors.New("aborted")
	// ErrTimeout is the reason recorded by signals created with Timeout.
	ErrTimeout = errors.New("signal timed out")
)

// Listener is invoked once with the abort reason.
type Listener func(reason error)

// Controller aborts the Signal it owns.
type Controller struct {
	signal *Signal
}

// NewController returns a Controller with a fresh, non-aborted Signal.
func NewController() *Controller {
	return &Controller{signal: newSignal()}
}

// Signal returns the signal owned by c.
func (c *Controller) Signal() *Signal {
	return c.signal
}

// Abort aborts the signal with reason, or ErrAborted if reason is nil.
// Only the first call has any effect.
func (c *Controller) Abort(reason error) {
	c.signal.abort(reason)
}

// Signal reports whether, and why, an operation was aborted. It is safe
// for concurrent use.
type Signal struct {
	mu        sync.Mutex
	aborted   bool
	reason    error
	listeners []Listener
	done      chan struct{}
}

func newSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Timeout returns a signal that aborts with ErrTimeout once d has elapsed,
// and a stop func that releases the timer. Call stop as soon as the guarded
// work finishes; it reports whether it prevented the abort.
func Timeout(d time.Duration) (*Signal, func() bool) {
	s := newSignal()
	timer := time.AfterFunc(d, func() { s.abort(ErrTimeout) })

	return s, timer.Stop
}

// Aborted reports whether the signal has been aborted.
func (s *Signal) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.aborted
}

// Reason returns the abort reason, or nil if the signal has not aborted.
func (s *Signal) Reason() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reason
}

// Err is an alias of Reason, mirroring context.Context.Err.
func (s *Signal) Err() error {
	return s.Reason()
}

// Done returns a channel closed when the signal aborts.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// AddListener registers fn and returns an id for RemoveListener. Ids are
// never reused and stay valid when other listeners are removed.
//
// If the signal has already aborted, fn is called immediately with the
// reason and is not retained.
func (s *Signal) AddListener(fn Listener) int {
	s.mu.Lock()
	id := len(s.listeners)
	if s.aborted {
		s.listeners = append(s.listeners, nil)
		reason := s.reason
		s.mu.Unlock()

		fn(reason)
		return id
	}
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()

	return id
}

// RemoveListener unregisters the listener with the given id. Unknown ids
// and repeated removals are ignored.
func (s *Signal) RemoveListener(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 0 || id >= len(s.listeners) {
		return
	}
	s.listeners[id] = nil
}

// Context returns a copy of parent that is cancelled when s aborts. The
// cancellation cause is the abort reason. Calling cancel releases the
// resources tied to the bridge and should be done once the work is finished.
func (s *Signal) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	id := s.AddListener(func(reason error) {
		cancel(reason)
	})

	return ctx, func() {
		s.RemoveListener(id)
		cancel(context.Canceled)
	}
}

func (s *Signal) abort(reason error) {
	if reason == nil {
		reason = ErrAborted
	}

	s.mu.Lock()
	if s.aborted {
		s.mu.Unlock()
		return
	}
	s.aborted = true
	s.reason = reason
	listeners := s.listeners
	s.listeners = make([]Listener, len(listeners))
	close(s.done)
	s.mu.Unlock()

	// Listeners may call back into the signal.
	for _, fn := range listeners {
		if fn != nil {
			fn(reason)
		}
	}
}
