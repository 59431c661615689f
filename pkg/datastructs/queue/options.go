package queue

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-ringqueue/pkg/logger"
	"github.com/huynhanx03/go-ringqueue/pkg/settings"
)

var nopLogger = zap.NewNop()

// Option configures a RingQueue.
type Option func(*config)

type config struct {
	logger      *zap.Logger
	maxCapacity int
}

func newConfig(opts []Option) config {
	cfg := config{logger: nopLogger}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger used to report growth and allocation failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxCapacity sets the hard limit for buffer growth.
// Zero means unlimited. Growth past the limit fails with ErrAllocation.
func WithMaxCapacity(n int) Option {
	if n < 0 {
		panic("queue: negative max capacity")
	}
	return func(c *config) {
		c.maxCapacity = n
	}
}

// NewFromConfig creates a RingQueue pre-sized and limited according to cfg.
// Options passed explicitly are applied after the config values.
// Negative values in cfg yield ErrInvalidConfig.
func NewFromConfig[T any](cfg *settings.Queue, opts ...Option) (*RingQueue[T], error) {
	if cfg == nil {
		return New[T](opts...), nil
	}
	if cfg.InitialCapacity < 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "initial_capacity %d", cfg.InitialCapacity)
	}
	if cfg.MaxCapacity < 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "max_capacity %d", cfg.MaxCapacity)
	}
	all := make([]Option, 0, len(opts)+1)
	all = append(all, WithMaxCapacity(cfg.MaxCapacity))
	all = append(all, opts...)
	return NewWithCapacity[T](cfg.InitialCapacity, all...)
}

// NewFromSettings creates a RingQueue from the full application config,
// logging through a logger built from cfg.Logger.
// Options passed explicitly are applied last and may replace that logger.
func NewFromSettings[T any](cfg *settings.Config, opts ...Option) (*RingQueue[T], error) {
	if cfg == nil {
		return New[T](opts...), nil
	}

	log, err := logger.New(&cfg.Logger)
	if err != nil {
		return nil, errors.Wrap(err, "queue logger")
	}

	all := make([]Option, 0, len(opts)+1)
	all = append(all, WithLogger(log))
	all = append(all, opts...)
	return NewFromConfig[T](&cfg.Queue, all...)
}
