package fake

import (
	"sort"
	"sync"
	"time"

	"github.com/slok/taskmon/internal/clock"
)

// Clock is a manually driven clock.Clock. Timers fire synchronously on the
// goroutine calling Advance, in due time order.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*timer
	nextID int
}

// NewClock returns a fake clock set at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the fake current time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to be called when the clock is advanced d or more.
func (c *Clock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	t := &timer{clock: c, id: c.nextID, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward d, firing every timer that becomes due,
// including the ones scheduled by fired timers inside the window.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		t := c.nextDueLocked(target)
		if t == nil {
			break
		}
		c.now = t.when
		c.removeLocked(t.id)

		// Run without the lock so the callback can use the clock.
		c.mu.Unlock()
		t.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// PendingTimers returns the number of timers waiting to fire.
func (c *Clock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Clock) nextDueLocked(target time.Time) *timer {
	if len(c.timers) == 0 {
		return nil
	}

	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].when.Before(c.timers[j].when) })
	if c.timers[0].when.After(target) {
		return nil
	}
	return c.timers[0]
}

func (c *Clock) removeLocked(id int) bool {
	for i, t := range c.timers {
		if t.id == id {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

type timer struct {
	clock *Clock
	id    int
	when  time.Time
	f     func()
}

func (t *timer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	return t.clock.removeLocked(t.id)
}
