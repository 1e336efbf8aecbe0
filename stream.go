package agentscope

import "sync"

// Stream is an iterator over events emitted during an agent run.
// Usage:
//
//	stream := agent.Stream(ctx, msgs, nil)
//	for stream.Next() {
//	    event := stream.Current()
//	    // handle event
//	}
//	if err := stream.Err(); err != nil {
//	    // handle error
//	}
type Stream struct {
	events  chan *Event
	current *Event

	mu   sync.Mutex
	err  error
	done bool
}

// NewStream creates a Stream reading from the given event channel. The
// producer closes the channel when the run is finished; Agent implementations
// outside this package use this to satisfy the Stream entry point.
func NewStream(events chan *Event) *Stream {
	return &Stream{events: events}
}

// Next advances to the next event. Returns false when the stream is exhausted.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}
	event, ok := <-s.events
	if !ok {
		s.done = true
		return false
	}
	s.current = event
	return true
}

// Current returns the most recent event returned by Next.
func (s *Stream) Current() *Event {
	return s.current
}

// Err returns the first error encountered during the run, if any.
// It is fully populated once Next has returned false.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Fail records the run error. Producers call it before closing the event
// channel.
func (s *Stream) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}
