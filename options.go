package refarena

import "log/slog"

// Option configures an Arena or Single.
type Option func(*config)

type config struct {
	logger   *slog.Logger
	policy   BugPolicy
	maxCells uint
}

func newConfig(opts []Option) config {
	cfg := config{
		logger: slog.New(slog.DiscardHandler),
		policy: defaultBugPolicy,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger used for diagnostics. Growth and reset events
// are logged at debug level; internal invariant violations at error level.
// A nil logger keeps the default, which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBugPolicy overrides how internal invariant violations are handled.
// The default is chosen at build time; see BugPolicy.
func WithBugPolicy(p BugPolicy) Option {
	return func(c *config) { c.policy = p }
}

// WithMaxCells bounds the number of stored cells. Inserts that would need
// another cell fail with ErrCapacityExhausted. n <= 0 means no bound.
func WithMaxCells(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxCells = uint(n)
		} else {
			c.maxCells = 0
		}
	}
}

// limit returns the exclusive upper bound on stored cells.
func (c *config) limit() uint {
	if c.maxCells == 0 || c.maxCells > noFree {
		return noFree
	}
	return c.maxCells
}
