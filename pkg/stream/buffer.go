package stream

import "sync"

// Buffer is a FIFO of events that crosses goroutines: producers call Handle
// from any goroutine, and the rendering goroutine drains it with Flush once
// per frame so events are never applied while a frame is being drawn.
type Buffer struct {
	mu     sync.Mutex
	events []Event
	closed bool
}

// NewBuffer creates an empty buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Handle implements Sink. Events received after Close are dropped.
func (b *Buffer) Handle(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.events = append(b.events, e)
}

// Len returns the number of pending events.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Flush delivers all pending events to sink in arrival order and returns how
// many were delivered. Events arriving during the flush wait for the next one.
func (b *Buffer) Flush(sink Sink) int {
	b.mu.Lock()
	pending := b.events
	b.events = nil
	b.mu.Unlock()

	for _, e := range pending {
		sink.Handle(e)
	}
	return len(pending)
}

// Close stops accepting events. Pending events can still be flushed.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}
