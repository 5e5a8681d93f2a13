package worker

import (
	"sync/atomic"

	"github.com/okian/relief/pkg/logger"
)

// settings is shared by NewInMemoryWorker and NewPool; the pool derives one
// copy per worker.
type settings struct {
	name   string
	logger logger.Logger
	active *atomic.Int64
}

func newSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a worker or a pool.
type Option func(*settings)

// WithName labels a standalone worker's log lines. Pool workers are always
// named worker-<n>.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger replaces the global logger. A pool names it worker-pool.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
