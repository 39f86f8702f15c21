package main

import (
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"lull/audio"
	"lull/engine"
)

func newTestModel(t *testing.T) (tuiModel, *engine.Engine) {
	t.Helper()
	vols := newVolumeTable(nil)
	eng := engine.New(audio.NewFakeContext(), vols)
	eng.DisableChimes()
	return newTUIModel(eng, nil, vols, newFocusTimer(25*time.Minute, 5*time.Minute)), eng
}

func press(m tuiModel, key string) tuiModel {
	var msg tea.Msg
	if key == "esc" {
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	} else {
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(tuiModel)
}

func TestTimerPauseParksAndResumesSounds(t *testing.T) {
	m, eng := newTestModel(t)

	m = press(m, "1")
	m = press(m, "s")
	if !eng.Playing(engine.Rain) {
		t.Fatal("rain should be playing before the pause")
	}

	m = press(m, "p")
	if !m.timer.Paused() {
		t.Fatal("timer did not pause")
	}
	if eng.Playing(engine.Rain) {
		t.Fatal("pausing the timer left rain playing")
	}

	m = press(m, "p")
	if m.timer.Paused() {
		t.Fatal("timer did not resume")
	}
	if !eng.Playing(engine.Rain) {
		t.Fatal("resuming the timer did not bring rain back")
	}
}

func TestTimerPauseKeyIsInertWhenIdle(t *testing.T) {
	m, eng := newTestModel(t)

	m = press(m, "1")
	m = press(m, "p")
	if m.timer.Paused() {
		t.Fatal("idle timer should not pause")
	}
	if !eng.Playing(engine.Rain) {
		t.Fatal("pause key with no running block should not touch the sounds")
	}
}

func TestTimerResetStopsAllSounds(t *testing.T) {
	m, eng := newTestModel(t)

	m = press(m, "1")
	m = press(m, "s")
	m = press(m, "esc")
	if m.timer.Phase() != phaseIdle {
		t.Fatalf("phase after reset = %v, want idle", m.timer.Phase())
	}
	if eng.Playing(engine.Rain) {
		t.Fatal("reset left rain playing")
	}
	if resumed, err := eng.ResumeLast(); err != nil || resumed {
		t.Fatalf("reset should clear the resume memory, got resumed=%v err=%v", resumed, err)
	}
}

func TestWrapTextKeepsRunesIntact(t *testing.T) {
	for _, text := range []string{
		"小さな一歩が大きな違いを生む。",
		"steady drops on a tin roof, 雨の音, all afternoon",
	} {
		for width := 1; width <= 12; width++ {
			for _, line := range wrapText(text, width) {
				if !utf8.ValidString(line) {
					t.Fatalf("width %d split a rune in %q: %q", width, text, line)
				}
			}
		}
	}
}
