package ports

import (
	"context"
	"time"
)

// Port: memoizes encoded planning results by problem fingerprint.
// Implementations must treat a missing key as a miss, not an error.
type SolutionCache interface {
	Get(ctx context.Context, key string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}
