package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LukasRub/crisiscorpus/app/twitter"
)

const (
	DefaultBatchSize    = 100
	DefaultQuotaRetries = 25
	DefaultEpsilon      = 5 * time.Second
)

// Fetcher retrieves documents for an ordered set of identifiers in
// bounded-size batches while respecting the provider's rolling quota. One
// batch call consumes one quota unit regardless of how many IDs it carries.
type Fetcher struct {
	client       Client
	opts         twitter.LookupOptions
	batchSize    int
	concurrency  int
	epsilon      time.Duration
	quotaRetries int

	mu     sync.Mutex
	budget budget
}

type Option func(*Fetcher)

func WithBatchSize(size int) Option {
	return func(f *Fetcher) { f.batchSize = size }
}

func WithConcurrency(n int) Option {
	return func(f *Fetcher) { f.concurrency = n }
}

func WithEpsilon(d time.Duration) Option {
	return func(f *Fetcher) { f.epsilon = d }
}

func WithQuotaRetries(n int) Option {
	return func(f *Fetcher) { f.quotaRetries = n }
}

func WithLookupOptions(opts twitter.LookupOptions) Option {
	return func(f *Fetcher) { f.opts = opts }
}

func New(client Client, options ...Option) *Fetcher {
	f := &Fetcher{
		client:       client,
		opts:         twitter.DefaultLookupOptions(),
		batchSize:    DefaultBatchSize,
		concurrency:  1,
		epsilon:      DefaultEpsilon,
		quotaRetries: DefaultQuotaRetries,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Partition splits ids into contiguous batches of at most size, preserving
// order. Every id appears in exactly one batch.
func Partition(ids []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}
	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		batches = append(batches, ids[start:end])
	}
	return batches
}

// Run fetches documents for every id. Results cover all input ids (absence
// markers included) in batch order; callers join by id, not position.
//
// On failure or cancellation, the documents of every batch completed so far
// are returned alongside the error so partial progress is salvageable.
func (f *Fetcher) Run(ctx context.Context, ids []string) ([]twitter.Status, error) {
	batches := Partition(ids, f.batchSize)
	results := make([][]twitter.Status, len(batches))

	slog.Info("Fetching documents", "ids", len(ids), "batches", len(batches), "batch_size", f.batchSize, "concurrency", f.concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i, batch := range batches {
		g.Go(func() error {
			statuses, err := f.fetchBatch(gctx, i, batch)
			if err != nil {
				return err
			}
			results[i] = statuses
			slog.Debug("Batch completed", "batch", i, "ids", len(batch))
			return nil
		})
	}

	err := g.Wait()

	var documents []twitter.Status
	for _, statuses := range results {
		documents = append(documents, statuses...)
	}

	if err != nil {
		return documents, err
	}

	slog.Info("Fetch completed", "documents", len(documents))
	return documents, nil
}

// fetchBatch issues one lookup call, retrying only provider-reported quota
// exhaustion. The retry bound is generous (quota windows are minutes, the
// bound is a defect detector, not a policy) but prevents spinning forever.
func (f *Fetcher) fetchBatch(ctx context.Context, index int, batch []string) ([]twitter.Status, error) {
	for attempt := 0; ; attempt++ {
		if err := f.acquire(ctx); err != nil {
			return nil, err
		}

		statuses, err := f.client.Lookup(ctx, batch, f.opts)
		if err == nil {
			return statuses, nil
		}

		if errors.Is(err, twitter.ErrQuotaExceeded) {
			if attempt+1 >= f.quotaRetries {
				return nil, fmt.Errorf("batch %d: quota retries exhausted after %d attempts: %w", index, attempt+1, err)
			}
			slog.Warn("Provider reported quota exceeded, will refresh and retry", "batch", index, "attempt", attempt+1)
			f.invalidateBudget()
			continue
		}

		return nil, &RetrievalError{Batch: index, Size: len(batch), Err: err}
	}
}

// acquire reserves one quota unit, blocking until the budget replenishes
// when exhausted. The check-and-decrement is atomic under the mutex so
// concurrent batches cannot jointly exceed the provider's quota. The wait is
// cancellable; after waking, the budget is refreshed from the provider's
// authoritative status rather than assumed full.
func (f *Fetcher) acquire(ctx context.Context) error {
	for {
		f.mu.Lock()

		if !f.budget.known {
			quota, err := f.client.QuotaStatus(ctx)
			if err != nil {
				f.mu.Unlock()
				return fmt.Errorf("failed to refresh quota status: %w", err)
			}
			f.budget.update(quota)
			slog.Info("Quota status refreshed", "remaining", quota.Remaining, "limit", quota.Limit, "reset_at", quota.ResetAt.Format(time.RFC3339))
		}

		if f.budget.remaining > 0 {
			f.budget.remaining--
			f.mu.Unlock()
			return nil
		}

		wait := f.budget.waitDuration(time.Now(), f.epsilon)
		f.budget.known = false
		f.mu.Unlock()

		slog.Info("Quota exhausted, suspending until replenishment", "sleep", wait.Round(time.Second).String())

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// invalidateBudget forces the next acquire to re-query the provider, used
// when the provider contradicts the local budget view.
func (f *Fetcher) invalidateBudget() {
	f.mu.Lock()
	f.budget.known = false
	f.budget.remaining = 0
	f.mu.Unlock()
}
