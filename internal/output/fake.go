package output

import (
	"sync"

	"github.com/sweeney/button-panel/internal/logic"
)

// FakeLEDs records every LED write.
type FakeLEDs struct {
	mu sync.Mutex

	// Writes contains every level set that was written.
	Writes []logic.Levels

	// Err, if set, will be returned by SetLevels (and nothing recorded).
	Err error
}

// SetLevels records levels.
func (f *FakeLEDs) SetLevels(levels logic.Levels) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Writes = append(f.Writes, levels)
	return nil
}

// Last returns the most recent write, zero if none.
func (f *FakeLEDs) Last() logic.Levels {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Writes) == 0 {
		return logic.Levels{}
	}
	return f.Writes[len(f.Writes)-1]
}

// FakeTone records Play and Stop calls.
type FakeTone struct {
	mu sync.Mutex

	// Played contains the frequency of every Play call.
	Played []int

	// Stops counts Stop calls.
	Stops int

	// Err, if set, will be returned by Play and Stop.
	Err error

	hz int
}

func (f *FakeTone) Play(hz int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Played = append(f.Played, hz)
	f.hz = hz
	return nil
}

func (f *FakeTone) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Stops++
	f.hz = 0
	return nil
}

// Sounding returns the frequency currently playing, 0 if silent.
func (f *FakeTone) Sounding() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hz
}

// FakeDisplay records rendered text.
type FakeDisplay struct {
	mu sync.Mutex

	// Texts contains every rendered text.
	Texts []string

	// Err, if set, will be returned by Render.
	Err error
}

func (f *FakeDisplay) Render(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Texts = append(f.Texts, text)
	return nil
}

// Last returns the most recent text, empty if none.
func (f *FakeDisplay) Last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Texts) == 0 {
		return ""
	}
	return f.Texts[len(f.Texts)-1]
}
