package wave

// TimerID identifies a pending timer.
type TimerID uint64

type timer struct {
	id        TimerID
	remaining float64
	fn        func()
}

// Timers is a list of cancellable one-shot callbacks driven by simulated
// time instead of wall-clock sleeps.
type Timers struct {
	next  TimerID
	items []timer
}

// After schedules fn to run once d seconds have been advanced.
func (t *Timers) After(d float64, fn func()) TimerID {
	t.next++
	t.items = append(t.items, timer{id: t.next, remaining: d, fn: fn})
	return t.next
}

// Cancel removes a pending timer. It returns false if it already fired.
func (t *Timers) Cancel(id TimerID) bool {
	for i, it := range t.items {
		if it.id == id {
			t.items = append(t.items[:i:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

// CancelAll drops every pending timer.
func (t *Timers) CancelAll() {
	t.items = nil
}

// Len returns the number of pending timers.
func (t *Timers) Len() int {
	return len(t.items)
}

// Advance moves time forward and runs due callbacks in scheduling order.
// Callbacks may schedule or cancel timers. A timer scheduled with a zero
// delay from inside a callback runs in the same Advance.
func (t *Timers) Advance(dt float64) int {
	for i := range t.items {
		t.items[i].remaining -= dt
	}
	fired := 0
	for {
		idx := -1
		for i, it := range t.items {
			if it.remaining <= 1e-9 {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fired
		}
		fn := t.items[idx].fn
		t.items = append(t.items[:idx:idx], t.items[idx+1:]...)
		fired++
		fn()
	}
}

// Watchdog expires when no activity is registered for Timeout seconds.
// A zero or negative Timeout disables it.
type Watchdog struct {
	Timeout float64
	idle    float64
}

// Reset restarts the countdown.
func (w *Watchdog) Reset() {
	w.idle = 0
}

// Advance adds dt of inactivity and reports whether the watchdog expired.
func (w *Watchdog) Advance(dt float64) bool {
	if w.Timeout <= 0 {
		return false
	}
	w.idle += dt
	return w.idle >= w.Timeout
}

// Remaining returns the seconds left before expiry.
func (w *Watchdog) Remaining() float64 {
	if w.Timeout <= 0 {
		return 0
	}
	return max(w.Timeout-w.idle, 0)
}
