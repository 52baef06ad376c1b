package fetcher

import (
	"time"

	"github.com/LukasRub/crisiscorpus/app/twitter"
)

// budget is the process-local view of the provider's rolling quota. It is
// owned by a single Fetcher and only touched under the fetcher's mutex;
// remaining decrements once per issued call and is replaced wholesale by the
// provider's authoritative numbers on refresh.
type budget struct {
	limit     int
	remaining int
	resetAt   time.Time
	known     bool
}

func (b *budget) update(q twitter.Quota) {
	b.limit = q.Limit
	b.remaining = q.Remaining
	b.resetAt = q.ResetAt
	b.known = true
}

// waitDuration is how long to sleep before the quota replenishes: the time
// until resetAt, never negative, plus an epsilon guarding clock skew.
func (b *budget) waitDuration(now time.Time, epsilon time.Duration) time.Duration {
	d := b.resetAt.Sub(now)
	if d < 0 {
		d = 0
	}
	return d + epsilon
}
