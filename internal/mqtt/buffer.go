package mqtt

// outMsg is one serialized message bound for the broker.
type outMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog holds outbound messages while the broker is unreachable. When full
// the oldest entry is overwritten. Not safe for concurrent use.
type backlog[T any] struct {
	items   []T
	next    int // slot for the next push
	size    int
	dropped uint64 // lifetime count of overwritten entries
}

func newBacklog[T any](capacity int) *backlog[T] {
	return &backlog[T]{items: make([]T, capacity)}
}

// push appends v and reports whether an older entry was lost to make room.
func (b *backlog[T]) push(v T) bool {
	b.items[b.next] = v
	b.next = (b.next + 1) % len(b.items)
	if b.size == len(b.items) {
		b.dropped++
		return true
	}
	b.size++
	return false
}

// pop removes and returns the oldest entry.
func (b *backlog[T]) pop() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}
	first := (b.next - b.size + len(b.items)) % len(b.items)
	v := b.items[first]
	b.items[first] = zero
	b.size--
	return v, true
}

// drain returns the held entries oldest first and empties the backlog.
func (b *backlog[T]) drain() []T {
	if b.size == 0 {
		return nil
	}
	out := make([]T, 0, b.size)
	first := (b.next - b.size + len(b.items)) % len(b.items)
	for i := 0; i < b.size; i++ {
		out = append(out, b.items[(first+i)%len(b.items)])
	}
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.next, b.size = 0, 0
	return out
}

func (b *backlog[T]) len() int { return b.size }
