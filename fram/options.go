package fram

import "time"

// Config holds the driver configuration.
type Config struct {
	// Logger is used for logging operations (optional)
	Logger Logger

	// PollLimit is the maximum number of status reads while waiting for the
	// write enable latch. Zero means no limit.
	PollLimit int

	// PollInterval is the pause between status reads
	PollInterval time.Duration

	// PollTimeout bounds the total time spent waiting for the latch. Zero
	// means no timeout.
	PollTimeout time.Duration

	// Poller replaces the bounded poller built from the settings above
	// (optional)
	Poller Poller

	// VerifyAfterWrite reads back data after Write and the block protect
	// bits after Unlock
	VerifyAfterWrite bool

	// ProtectionCheck rejects writes into a write-protected block before
	// touching the array
	ProtectionCheck bool

	// StrictBounds rejects transfers that run past the end of the array
	// instead of letting the device wrap
	StrictBounds bool
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		PollLimit: 1000, // a real part sets WEL on the first read
	}
}

// poller returns the configured Poller.
func (c *Config) poller() Poller {
	if c.Poller != nil {
		return c.Poller
	}
	return BoundedPoller{
		Limit:    c.PollLimit,
		Interval: c.PollInterval,
		Timeout:  c.PollTimeout,
	}
}

// Option is a functional option for configuring the Device.
type Option func(*Config)

// WithLogger sets a logger for driver operations.
//
// Example:
//
//	dev, err := fram.New(conn, profile.FM25V20A, fram.WithLogger(myLogger))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithPollLimit sets the maximum number of status reads while waiting for
// the write enable latch. Zero removes the limit; the poll then only stops
// on success, PollTimeout or context cancellation.
func WithPollLimit(limit int) Option {
	return func(c *Config) {
		if limit >= 0 {
			c.PollLimit = limit
		}
	}
}

// WithPollInterval sets the pause between status reads.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Config) {
		if interval >= 0 {
			c.PollInterval = interval
		}
	}
}

// WithPollTimeout bounds the total time spent waiting for the latch.
//
// Example:
//
//	dev, err := fram.New(conn, p, fram.WithPollTimeout(10*time.Millisecond))
func WithPollTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.PollTimeout = timeout
		}
	}
}

// WithPoller replaces the latch poller, e.g. with one that feeds a
// watchdog between attempts.
func WithPoller(p Poller) Option {
	return func(c *Config) {
		c.Poller = p
	}
}

// WithVerifyAfterWrite enables or disables read-back verification.
// Default is false, which keeps each call to one transaction sequence.
func WithVerifyAfterWrite(verify bool) Option {
	return func(c *Config) {
		c.VerifyAfterWrite = verify
	}
}

// WithProtectionCheck enables or disables the block protect check before
// Write. Default is false.
func WithProtectionCheck(check bool) Option {
	return func(c *Config) {
		c.ProtectionCheck = check
	}
}

// WithStrictBounds enables or disables the end-of-array check. Default is
// false: like the device itself, transfers wrap to address 0.
func WithStrictBounds(strict bool) Option {
	return func(c *Config) {
		c.StrictBounds = strict
	}
}
