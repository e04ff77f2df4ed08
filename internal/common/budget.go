package common

import "time"

// Budget tracks a soft wall-clock allowance for staged work. Callers check
// Exceeded between stages; a stage that already started runs to completion.
// A zero or negative limit never expires.
type Budget struct {
	start time.Time
	limit time.Duration
}

// StartBudget begins a budget with the given allowance.
func StartBudget(limit time.Duration) Budget {
	return Budget{start: time.Now(), limit: limit}
}

// Exceeded reports whether the allowance has been spent.
func (b Budget) Exceeded() bool {
	if b.limit <= 0 {
		return false
	}
	return time.Since(b.start) >= b.limit
}

// Elapsed returns the time spent since the budget started.
func (b Budget) Elapsed() time.Duration {
	return time.Since(b.start)
}

// Remaining returns the unspent allowance, floored at zero. An unlimited
// budget reports zero remaining; use Exceeded to distinguish.
func (b Budget) Remaining() time.Duration {
	if b.limit <= 0 {
		return 0
	}
	r := b.limit - time.Since(b.start)
	if r < 0 {
		return 0
	}
	return r
}
