package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scythe504/sketchroom/internal"
)

// =============================================================================
// MANUAL SCHEDULER
// =============================================================================

type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *fakeScheduler
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *fakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, at: s.now.Add(d), f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves the clock forward and runs every timer that comes due, in
// deadline order, on the calling goroutine.
func (s *fakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *fakeTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()

		next.f()
	}
}

// pending returns the timers that are still armed.
func (s *fakeScheduler) pending() []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// =============================================================================
// MEMBERS
// =============================================================================

var memberIDs atomic.Uint64

type fakeMember struct {
	id   uint64
	mu   sync.Mutex
	msgs []internal.Message
}

func newFakeMember() *fakeMember {
	return &fakeMember{id: memberIDs.Add(1)}
}

func (m *fakeMember) ID() uint64 { return m.id }

func (m *fakeMember) Send(msg internal.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return nil
}

func (m *fakeMember) messages() []internal.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]internal.Message(nil), m.msgs...)
}

func (m *fakeMember) names() []string {
	var out []string
	for _, msg := range m.messages() {
		out = append(out, msg.MsgName())
	}
	return out
}

func (m *fakeMember) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = nil
}

// serverLines returns the chat lines authored by the server.
func (m *fakeMember) serverLines() []string {
	var out []string
	for _, msg := range m.messages() {
		if chat, ok := msg.(internal.ChatMessageBc); ok && chat.Author == internal.ServerName {
			out = append(out, chat.Message)
		}
	}
	return out
}

func lastOf[T internal.Message](m *fakeMember) (T, bool) {
	msgs := m.messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if v, ok := msgs[i].(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func countOf[T internal.Message](m *fakeMember) int {
	n := 0
	for _, msg := range m.messages() {
		if _, ok := msg.(T); ok {
			n++
		}
	}
	return n
}

// =============================================================================
// GUESSER & RECORDER
// =============================================================================

type stubGuesser struct {
	guess   string
	strokes int
	panics  bool
}

func (g *stubGuesser) AddStroke(internal.Stroke) { g.strokes++ }

func (g *stubGuesser) UndoStroke() {
	if g.strokes > 0 {
		g.strokes--
	}
}

func (g *stubGuesser) Clear() { g.strokes = 0 }

func (g *stubGuesser) Guess() string {
	if g.panics {
		panic("model exploded")
	}
	return g.guess
}

type chanRecorder struct {
	results chan internal.GameResult
}

func newChanRecorder() *chanRecorder {
	return &chanRecorder{results: make(chan internal.GameResult, 4)}
}

func (c *chanRecorder) RecordGame(_ context.Context, result internal.GameResult) error {
	c.results <- result
	return nil
}
