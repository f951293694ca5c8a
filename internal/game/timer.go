package game

import (
	"time"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler is the room's source of time. Tests swap in a manual one.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type SystemScheduler struct{}

func (SystemScheduler) Now() time.Time { return time.Now() }

func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RoundTimer drives the half-time and full-time events of one round. All of
// its fields are guarded by the owning room's mutex.
type RoundTimer struct {
	room       *Room
	generation uint64
	duration   time.Duration

	startedAt time.Time
	finished  bool
	elapsed   time.Duration
	pending   Timer
}

func newRoundTimer(room *Room, generation uint64, duration time.Duration) *RoundTimer {
	return &RoundTimer{room: room, generation: generation, duration: duration}
}

// start records the round start and arms the half-time callback.
func (t *RoundTimer) start() {
	t.startedAt = t.room.sched.Now()
	t.pending = t.room.sched.AfterFunc(t.duration/2, t.halfTimePassed)
}

// finish stops the round and returns the time it lasted. Calling it twice
// returns the first measurement.
func (t *RoundTimer) finish() time.Duration {
	if t.finished {
		return t.elapsed
	}
	t.finished = true
	t.elapsed = t.room.sched.Now().Sub(t.startedAt)
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	return t.elapsed
}

// live reports whether the timer still belongs to the room's current round.
// A callback that was already waiting on the mutex when its round ended
// fails this check.
func (t *RoundTimer) live() bool {
	r := t.room
	return !t.finished && !r.closed && r.timer == t && r.round == t.generation
}

func (t *RoundTimer) remaining() time.Duration {
	return t.duration - t.duration/2
}

func (t *RoundTimer) halfTimePassed() {
	r := t.room
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverPanic("halfTimePassed")

	if !t.live() {
		r.log.Debug().Uint64("round", t.generation).Msg("[RoundTimer] stale half-time callback ignored")
		return
	}

	r.onHalfTime(t.remaining())
	t.pending = r.sched.AfterFunc(t.remaining(), t.fullTimePassed)
}

func (t *RoundTimer) fullTimePassed() {
	r := t.room
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.recoverPanic("fullTimePassed")

	if !t.live() {
		r.log.Debug().Uint64("round", t.generation).Msg("[RoundTimer] stale full-time callback ignored")
		return
	}

	r.onRoundTimeout()
}
