package main

import "time"

// Default session shape, overridable with -work and -break.
const (
	defaultWorkMinutes  = 25
	defaultBreakMinutes = 5
)

type timerPhase int

const (
	phaseIdle timerPhase = iota
	phaseWork
	phaseBreak
)

func (p timerPhase) String() string {
	switch p {
	case phaseWork:
		return "work"
	case phaseBreak:
		return "break"
	}
	return "idle"
}

type timerEvent int

const (
	eventNone timerEvent = iota
	eventWorkDone
	eventBreakDone
)

// focusTimer is the work/break session clock. It holds no goroutine and
// no wall clock of its own; the owner feeds it elapsed time through
// Tick, which makes it trivial to drive from a Bubble Tea tick message
// or from a test.
type focusTimer struct {
	work      time.Duration
	rest      time.Duration
	phase     timerPhase
	remaining time.Duration
	paused    bool
	completed int
}

func newFocusTimer(work, rest time.Duration) *focusTimer {
	return &focusTimer{work: work, rest: rest}
}

// StartWork begins a work block, discarding whatever phase was running.
func (t *focusTimer) StartWork() {
	t.phase = phaseWork
	t.remaining = t.work
	t.paused = false
}

// Stop abandons the current block without crediting it.
func (t *focusTimer) Stop() {
	t.phase = phaseIdle
	t.remaining = 0
	t.paused = false
}

// TogglePause freezes or unfreezes the clock. Idle is never paused.
func (t *focusTimer) TogglePause() {
	if t.phase == phaseIdle {
		return
	}
	t.paused = !t.paused
}

// Skip ends the current block immediately, as if it had run out.
func (t *focusTimer) Skip() timerEvent {
	if t.phase == phaseIdle {
		return eventNone
	}
	t.remaining = 0
	return t.advance()
}

// Tick advances the clock by elapsed and reports the phase boundary it
// crossed, if any. A finished work block rolls straight into the break;
// a finished break returns the timer to idle.
func (t *focusTimer) Tick(elapsed time.Duration) timerEvent {
	if t.phase == phaseIdle || t.paused {
		return eventNone
	}
	t.remaining -= elapsed
	if t.remaining > 0 {
		return eventNone
	}
	return t.advance()
}

func (t *focusTimer) advance() timerEvent {
	switch t.phase {
	case phaseWork:
		t.completed++
		t.phase = phaseBreak
		t.remaining = t.rest
		t.paused = false
		return eventWorkDone
	case phaseBreak:
		t.phase = phaseIdle
		t.remaining = 0
		t.paused = false
		return eventBreakDone
	}
	return eventNone
}

func (t *focusTimer) Phase() timerPhase { return t.phase }
func (t *focusTimer) Paused() bool      { return t.paused }
func (t *focusTimer) Completed() int    { return t.completed }

// Remaining never goes negative; a finished phase reads as zero.
func (t *focusTimer) Remaining() time.Duration {
	if t.remaining < 0 {
		return 0
	}
	return t.remaining
}
