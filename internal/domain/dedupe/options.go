package dedupe

type options struct {
	capacity int
	key      func(string) string
}

// Option applies a configuration option to a Deduper.
type Option func(*options)

// WithCapacity presizes the set for the expected number of IDs.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithKeyFunc canonicalizes IDs before comparison (e.g. trimming whitespace).
func WithKeyFunc(fn func(string) string) Option {
	return func(o *options) {
		o.key = fn
	}
}
