package button

import (
	"sync"
	"time"
)

// TimeScheduler runs callbacks on runtime timers.
type TimeScheduler struct{}

// AfterFunc schedules f on its own goroutine after d.
func (TimeScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// ManualScheduler is a test double whose clock only moves on Advance.
// Callbacks run synchronously inside Advance, in due order.
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []scheduled
}

type scheduled struct {
	at  time.Duration
	seq int
	f   func()
}

// NewManualScheduler creates a scheduler at elapsed time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc records f to run once Advance moves past d from now.
func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	s.seq++
	s.pending = append(s.pending, scheduled{at: s.now + d, seq: s.seq, f: f})
	s.mu.Unlock()
}

// Advance moves the clock forward by d and runs every callback that comes
// due, in due order. The clock stands at each callback's due time while it
// runs, so a callback that schedules another one inside the window sees it
// run within the same Advance.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	for {
		next := -1
		for i, p := range s.pending {
			if p.at > target {
				continue
			}
			if next < 0 || p.at < s.pending[next].at ||
				(p.at == s.pending[next].at && p.seq < s.pending[next].seq) {
				next = i
			}
		}
		if next < 0 {
			break
		}
		p := s.pending[next]
		s.pending = append(s.pending[:next], s.pending[next+1:]...)
		if p.at > s.now {
			s.now = p.at
		}
		s.mu.Unlock()
		p.f()
		s.mu.Lock()
	}
	s.now = target
	s.mu.Unlock()
}

// Pending returns the number of callbacks not yet run.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
