// Package ratelimit provides the sliding-window throttle used by the
// resend-verification endpoint. The store is injected into the handler so
// its lifecycle is explicit and tests can swap implementations.
package ratelimit

import "context"

// Limiter answers whether key may perform one more request inside the
// window. An allowed call counts against the window immediately.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
