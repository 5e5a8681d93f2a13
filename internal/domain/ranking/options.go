package ranking

type options struct {
	capacity int
}

// Option applies a configuration option to a Ranker.
type Option func(*options)

// WithCapacity presizes the id index for the expected number of candidates.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
