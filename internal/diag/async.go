package diag

import "sync"

// DefaultQueueSize is the async sink capacity: about 2s of records at 50Hz.
const DefaultQueueSize = 100

// AsyncSink decouples the loop from a slow output. Records are queued in a
// ring buffer and written by a background goroutine; when the queue is full
// the oldest record is dropped.
type AsyncSink struct {
	out Sink

	mu     sync.Mutex
	buf    *ringBuffer
	closed bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

// NewAsyncSink starts the writer goroutine.
func NewAsyncSink(out Sink, capacity int) *AsyncSink {
	s := &AsyncSink{
		out:  out,
		buf:  newRingBuffer(capacity),
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

// Emit queues a record. It never blocks on the output.
func (s *AsyncSink) Emit(rec Record) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.buf.push(rec)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Dropped returns how many records were discarded because the queue was full.
func (s *AsyncSink) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.dropped
}

// Close flushes queued records and stops the writer goroutine.
func (s *AsyncSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return nil
}

func (s *AsyncSink) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.flush()
		case <-s.stop:
			s.flush()
			return
		}
	}
}

func (s *AsyncSink) flush() {
	s.mu.Lock()
	recs := s.buf.drainAll()
	s.mu.Unlock()

	for _, r := range recs {
		s.out.Emit(r)
	}
}
