package clock

import "time"

// Clock abstracts wall-clock time so the state machine and the finalization
// job are deterministic under test. time.Now lives only behind Real.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func Real() Clock { return realClock{} }

// Fixed is a settable clock for tests.
type Fixed struct {
	Current time.Time
}

func NewFixed(t time.Time) *Fixed { return &Fixed{Current: t} }

func (f *Fixed) Now() time.Time { return f.Current }

func (f *Fixed) Set(t time.Time) { f.Current = t }

func (f *Fixed) Advance(d time.Duration) { f.Current = f.Current.Add(d) }
