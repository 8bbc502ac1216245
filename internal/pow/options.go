package pow

// DefaultCheckInterval is how many hashes a worker computes between two
// cancellation checks.
const DefaultCheckInterval = 4096

// Option tunes Compute.
type Option func(*options)

type options struct {
	workers       int
	checkInterval uint64
	progress      func(attempts uint64)
}

func newOptions(opts []Option) *options {
	o := &options{workers: 1, checkInterval: DefaultCheckInterval}
	for _, opt := range opts {
		opt(o)
	}
	if o.checkInterval == 0 {
		o.checkInterval = DefaultCheckInterval
	}
	return o
}

func (o *options) report(attempts uint64) {
	if o.progress != nil && attempts > 0 {
		o.progress(attempts)
	}
}

// WithWorkers shards the nonce space over n goroutines. Values below 2 keep
// the sequential search.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithCheckInterval sets how often workers look at the context.
func WithCheckInterval(n uint64) Option {
	return func(o *options) { o.checkInterval = n }
}

// WithProgress registers a callback that receives the number of hashes
// computed since its previous call. With several workers it is called
// concurrently and must be safe for that.
func WithProgress(fn func(attempts uint64)) Option {
	return func(o *options) { o.progress = fn }
}
