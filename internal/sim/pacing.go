package sim

import (
	"context"
	"time"
)

// tickBudget is the minimum duration of one tick. The cap is evaluated one
// tick per second above maxRate so that a loop running exactly at the cap
// still sleeps.
func tickBudget(maxRate int) time.Duration {
	return time.Second / time.Duration(maxRate+1)
}

// sleepFor returns how long to wait to fill the tick budget. It is zero
// when the tick already overran.
func sleepFor(elapsed, budget time.Duration) time.Duration {
	if elapsed >= budget {
		return 0
	}
	return budget - elapsed
}

// measureRate converts a tick duration into ticks per second.
func measureRate(elapsed time.Duration) (int, bool) {
	if elapsed <= 0 {
		return 0, false
	}
	return int(time.Second / elapsed), true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
