package output

import "log"

// AsyncDisplay hands text to a slow display on its own goroutine.
// Only the latest text is kept: a Render while a draw is in flight replaces
// any text still waiting. Render never blocks.
//
// Render must not be called after Close.
type AsyncDisplay struct {
	inner Display
	next  chan string
	done  chan struct{}
}

// NewAsyncDisplay starts the draw goroutine.
func NewAsyncDisplay(inner Display) *AsyncDisplay {
	a := &AsyncDisplay{
		inner: inner,
		next:  make(chan string, 1),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

// Render queues text, dropping any older text not yet drawn.
// Expects a single caller goroutine.
func (a *AsyncDisplay) Render(text string) error {
	select {
	case a.next <- text:
		return nil
	default:
	}
	select {
	case <-a.next:
	default:
	}
	select {
	case a.next <- text:
	default:
	}
	return nil
}

func (a *AsyncDisplay) run() {
	defer close(a.done)
	for text := range a.next {
		if err := a.inner.Render(text); err != nil {
			log.Printf("display: %v", err)
		}
	}
}

// Close waits for the pending draw, if any, and stops the goroutine.
func (a *AsyncDisplay) Close() error {
	close(a.next)
	<-a.done
	return nil
}
