package events

import (
	"context"
	"sync"
)

// Message is one event captured by a Recorder.
type Message struct {
	Queue string
	Event interface{}
}

// Recorder keeps published events in memory. Tests use it to assert on
// what a service emitted.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Publish implements Publisher.
func (r *Recorder) Publish(_ context.Context, queue string, event interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Queue: queue, Event: event})
	return nil
}

// Messages returns a copy of the recorded events, optionally filtered by queue.
func (r *Recorder) Messages(queue string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.messages {
		if queue == "" || m.Queue == queue {
			out = append(out, m)
		}
	}
	return out
}
