// Package throttle rate-limits outbound fetches using a token-bucket
// algorithm from [golang.org/x/time/rate].
//
// # Usage
//
// Create a [Limiter] and call [Limiter.Wait] before each request:
//
//	lim, err := throttle.NewLimiter(
//		10, // requests per second
//		5,  // burst capacity
//		func() *slog.Logger { return slog.Default() },
//	)
//	if err := lim.Wait(ctx, "/v1/items"); err != nil {
//		return err
//	}
//
// When the rate limit is exceeded, Wait blocks until a token becomes
// available or ctx is done. The client package installs a Limiter in its
// transport chain via client.WithThrottle.
package throttle
