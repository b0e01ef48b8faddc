package engine

import "time"

// timer is a single-shot coalescing timer owned by the engine loop.
// Re-arming cancels the pending fire; a fire that was superseded while its
// callback was queued is discarded by the sequence check. All methods must
// be called on the loop.
type timer struct {
	clock Clock
	delay time.Duration
	post  func(func())
	fire  func()

	seq      uint64
	armed    bool
	deadline time.Time
	stop     Stopper
}

func newTimer(clock Clock, delay time.Duration, post func(func()), fire func()) *timer {
	return &timer{clock: clock, delay: delay, post: post, fire: fire}
}

func (t *timer) arm() {
	t.cancel()
	seq := t.seq
	t.armed = true
	t.deadline = t.clock.Now().Add(t.delay)
	t.stop = t.clock.AfterFunc(t.delay, func() {
		t.post(func() {
			if !t.armed || t.seq != seq {
				return
			}
			t.armed = false
			t.stop = nil
			t.fire()
		})
	})
}

func (t *timer) cancel() {
	if t.stop != nil {
		t.stop.Stop()
		t.stop = nil
	}
	t.seq++
	t.armed = false
}

func (t *timer) pending() bool {
	return t.armed
}
