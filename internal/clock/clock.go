// Package clock provides an injectable time source so that debounce windows
// and click-delay timers can be driven deterministically in tests.
//
// Production code uses Real(). Tests use Fake(t0) and call Advance to fire
// pending timers in deadline order.
package clock

import "time"

// Clock abstracts the parts of the time package the board needs.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for d, then calls f. The returned Timer cancels the
	// pending call with Stop.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a cancellable scheduled call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the Timer from firing. It returns true if the call stopped
// the timer, false if it had already fired or been stopped.
func (t *Timer) Stop() bool {
	if t == nil || t.stopFunc == nil {
		return false
	}
	return t.stopFunc()
}
