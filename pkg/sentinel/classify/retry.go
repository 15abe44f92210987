package classify

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry defaults, matching the provider wrapper's historical behavior.
const (
	DefaultAttempts  = 3
	DefaultBaseDelay = 2 * time.Second
)

// Retrier wraps a Classifier with a bounded exponential-backoff retry
// policy. Only transient errors are retried; malformed responses and
// other failures return immediately.
type Retrier struct {
	Classifier Classifier
	Attempts   int           // total attempts, zero means DefaultAttempts
	BaseDelay  time.Duration // initial backoff, zero means DefaultBaseDelay
}

// Classify implements Classifier.
func (r *Retrier) Classify(ctx context.Context, text string, topics []string) (Result, error) {
	attempts := r.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	base := r.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}

	var res Result
	operation := func() error {
		var err error
		res, err = r.Classifier.Classify(ctx, text, topics)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrTransient) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = base
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return Result{}, err
	}
	return res, nil
}
