// Package schedule wakes background jobs at local day boundaries.
package schedule

import (
	"context"
	"time"
)

// NextMidnight returns the start of the day after now, in now's location.
func NextMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

// RunDaily calls task at every local midnight until ctx is cancelled.
// The timer is re-armed after each run so a slow task never fires twice for one day.
func RunDaily(ctx context.Context, now func() time.Time, task func(ctx context.Context)) error {
	if now == nil {
		now = time.Now
	}
	for {
		current := now()
		timer := time.NewTimer(NextMidnight(current).Sub(current))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			task(ctx)
		}
	}
}
