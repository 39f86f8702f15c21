package main

import (
	"sync"

	"lull/engine"
	"lull/log"
	"lull/store"
)

// volumeTable holds the per-channel volume percents. The TUI writes to
// it on slider moves; the engine reads from it when a channel starts,
// possibly from the hotkey goroutine, hence the mutex. Writes go
// through to the settings table so volumes survive restarts.
type volumeTable struct {
	mu sync.Mutex
	st *store.Store
	v  [5]int
}

func newVolumeTable(st *store.Store) *volumeTable {
	t := &volumeTable{st: st}
	for _, ch := range engine.AllChannels() {
		t.v[ch] = store.DefaultVolume
		if st != nil {
			t.v[ch] = st.Volume(ch.String())
		}
	}
	return t
}

func (t *volumeTable) Volume(ch engine.Channel) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.v[ch]
}

func (t *volumeTable) Set(ch engine.Channel, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.mu.Lock()
	t.v[ch] = percent
	t.mu.Unlock()
	if t.st != nil {
		if err := t.st.SetVolume(ch.String(), percent); err != nil {
			log.Warnf("persist volume: %v", err)
		}
	}
}
