package dedupe

const defaultCapacity = 256

type options struct {
	capacity int
}

// Option applies a configuration option to the deduper.
type Option func(*options)

// WithCapacity presizes the key set.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}
