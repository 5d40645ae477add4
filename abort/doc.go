// Package abort provides a cancellation registry modeled on the
// AbortController / AbortSignal pair found in web platforms.
//
// # Controllers and Signals
//
// A [Controller] owns exactly one [Signal]. The controller aborts; anyone
// holding the signal can observe it:
//
//	ctrl := abort.NewController()
//	sig := ctrl.Signal()
//
//	id := sig.AddListener(func(reason error) {
//		log.Println("aborted:", reason)
//	})
//	defer sig.RemoveListener(id)
//
//	ctrl.Abort(nil) // reason defaults to ErrAborted
//
// Aborting is one-shot. The first call records the reason and runs every
// registered listener once, in registration order. Later calls are no-ops.
//
// # Bridging to context
//
// Signals interoperate with [context.Context]. [Signal.Done] behaves like
// [context.Context.Done], and [Signal.Context] derives a context that is
// cancelled, with the signal's reason as its cause, when the signal aborts:
//
//	ctx, cancel := sig.Context(parent)
//	defer cancel()
//
// [Timeout] returns a signal that aborts itself after a duration, and a
// stop func that releases its timer:
//
//	sig, stop := abort.Timeout(5 * time.Second)
//	defer stop()
package abort
