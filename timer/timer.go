// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package timer

import (
	"sync"
	"time"
)

// Timer is a one-shot or periodic callback timer (§4.6). A Timer is
// reusable: Start may be called again after the previous run has fired
// or been stopped, and reuses the same identity.
//
// Timer is safe for concurrent use. Stop is idempotent: calling it on a
// Timer that has already fired (one-shot) or was never started is a
// no-op.
type Timer struct {
	mu         sync.Mutex
	t          *time.Timer
	duration   time.Duration
	periodic   bool
	callback   func(arg any)
	arg        any
	stopped    bool
	generation uint64
}

// New returns a Timer that is not running.
func New() *Timer {
	return &Timer{stopped: true}
}

// Start arms the timer to invoke cb(arg) after d elapses. If periodic is
// true, the timer rearms itself after every firing until Stop is called.
// Start replaces any previous armed state, so calling it again before
// the prior firing is itself a rearm, not an error.
//
// cb runs on its own goroutine, as with time.AfterFunc. cb must not
// block; the rest of the stack may be waiting on a timer.Event that cb
// is responsible for signalling.
func (tm *Timer) Start(d time.Duration, periodic bool, cb func(arg any), arg any) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.t != nil {
		tm.t.Stop()
	}
	tm.duration = d
	tm.periodic = periodic
	tm.callback = cb
	tm.arg = arg
	tm.stopped = false
	tm.generation++
	tm.scheduleLocked(tm.generation)
}

// Stop disarms the timer. It is safe to call on a Timer that is not
// running. A callback already in flight when Stop is called may still
// complete; Stop only prevents any future firing.
func (tm *Timer) Stop() {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.stopped = true
	tm.generation++
	if tm.t != nil {
		tm.t.Stop()
	}
}

// Running reports whether the timer is currently armed.
func (tm *Timer) Running() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return !tm.stopped
}

func (tm *Timer) scheduleLocked(gen uint64) {
	tm.t = time.AfterFunc(tm.duration, func() { tm.fire(gen) })
}

func (tm *Timer) fire(gen uint64) {
	tm.mu.Lock()
	if tm.stopped || gen != tm.generation {
		tm.mu.Unlock()
		return
	}
	cb, arg := tm.callback, tm.arg
	if tm.periodic {
		tm.scheduleLocked(gen)
	} else {
		tm.stopped = true
	}
	tm.mu.Unlock()

	if cb != nil {
		cb(arg)
	}
}
