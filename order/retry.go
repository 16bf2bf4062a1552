package order

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryStore retries transient store failures with exponential backoff.
// ErrNotFound is never retried and Create is passed through untouched.
type RetryStore struct {
	Store
	maxElapsed time.Duration
	newBackOff func() backoff.BackOff
}

// NewRetryStore wraps s. maxElapsed bounds the total time spent retrying one call.
func NewRetryStore(s Store, maxElapsed time.Duration) *RetryStore {
	r := &RetryStore{Store: s, maxElapsed: maxElapsed}
	r.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 50 * time.Millisecond
		b.MaxInterval = time.Second
		b.MaxElapsedTime = r.maxElapsed
		return b
	}
	return r
}

func (r *RetryStore) do(ctx context.Context, op func() error) error {
	return backoff.Retry(func() error {
		err := op()
		if errors.Is(err, ErrNotFound) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(r.newBackOff(), ctx))
}

func (r *RetryStore) Get(ctx context.Context, id string) (*Order, error) {
	var o *Order
	err := r.do(ctx, func() error {
		var err error
		o, err = r.Store.Get(ctx, id)
		return err
	})
	return o, err
}

func (r *RetryStore) UpdateStatus(ctx context.Context, id string, status Status, note string) error {
	return r.do(ctx, func() error { return r.Store.UpdateStatus(ctx, id, status, note) })
}

func (r *RetryStore) AddNote(ctx context.Context, id, note string) error {
	return r.do(ctx, func() error { return r.Store.AddNote(ctx, id, note) })
}

func (r *RetryStore) MarkPaid(ctx context.Context, id, reference string) (bool, error) {
	var applied bool
	err := r.do(ctx, func() error {
		var err error
		applied, err = r.Store.MarkPaid(ctx, id, reference)
		return err
	})
	return applied, err
}
