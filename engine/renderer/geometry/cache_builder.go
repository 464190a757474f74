package geometry

import "github.com/Carmen-Shannon/oxy-map/engine/document"

// CacheBuilderOption is a functional option applied to a cache during construction via NewCache.
type CacheBuilderOption func(*cache)

// WithStagingWorkers stages the face vertices of each texture group in parallel on a worker pool
// of n goroutines. Buffer writes remain serial. Zero or less stages on the calling goroutine.
//
// Parameters:
//   - n: the number of staging workers
//
// Returns:
//   - CacheBuilderOption: a function that sets the worker count
func WithStagingWorkers(n int) CacheBuilderOption {
	return func(c *cache) {
		c.stagingWorkers = n
	}
}

// WithDummyTexture replaces the texture substituted for faces without one.
//
// Parameters:
//   - t: the placeholder texture
//
// Returns:
//   - CacheBuilderOption: a function that sets the dummy texture
func WithDummyTexture(t *document.Texture) CacheBuilderOption {
	return func(c *cache) {
		if t != nil {
			c.dummy = t
		}
	}
}
