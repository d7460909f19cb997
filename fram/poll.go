package fram

import (
	"context"
	"errors"
	"time"
)

// ErrPollLimit is returned by BoundedPoller when the attempt limit is
// reached.
var ErrPollLimit = errors.New("poll limit reached")

// Poller repeatedly calls done until it reports true, an error occurs, or
// the poller gives up. It returns the number of calls made.
//
// The latch controller uses a Poller to wait for the write enable latch.
// An error returned by done is returned as is; any other error means the
// poller gave up.
type Poller interface {
	Poll(ctx context.Context, done func() (bool, error)) (attempts int, err error)
}

// PollerFunc adapts a function to the Poller interface.
type PollerFunc func(ctx context.Context, done func() (bool, error)) (int, error)

// Poll calls f.
func (f PollerFunc) Poll(ctx context.Context, done func() (bool, error)) (int, error) {
	return f(ctx, done)
}

// BoundedPoller polls until done, the attempt limit, the timeout, or
// context cancellation, whichever comes first.
type BoundedPoller struct {
	// Limit is the maximum number of attempts. Zero means no limit.
	Limit int

	// Interval is the pause between attempts. Zero means back to back.
	Interval time.Duration

	// Timeout bounds the whole poll. Zero means no timeout.
	Timeout time.Duration
}

// Poll implements Poller.
func (p BoundedPoller) Poll(ctx context.Context, done func() (bool, error)) (int, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	for attempts := 0; ; {
		if err := ctx.Err(); err != nil {
			return attempts, err
		}

		ok, err := done()
		attempts++
		if err != nil || ok {
			return attempts, err
		}

		if p.Limit > 0 && attempts >= p.Limit {
			return attempts, ErrPollLimit
		}

		if p.Interval > 0 {
			if err := sleep(ctx, p.Interval); err != nil {
				return attempts, err
			}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
