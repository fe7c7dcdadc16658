package diag

import "log"

// ringBuffer is a fixed-capacity FIFO of records awaiting the output writer.
// Not safe for concurrent use; the caller must synchronize.
type ringBuffer struct {
	buf      []Record
	capacity int
	head     int // next write position
	count    int
	dropped  uint64
	overflow bool // true if any record was dropped since last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{
		buf:      make([]Record, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(rec Record) {
	if r.count == r.capacity {
		if !r.overflow {
			log.Printf("diag: buffer full (%d records), dropping oldest", r.capacity)
			r.overflow = true
		}
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = rec
		r.head = (r.head + 1) % r.capacity
		r.dropped++
		return
	}
	r.buf[r.head] = rec
	r.head = (r.head + 1) % r.capacity
	r.count++
}

func (r *ringBuffer) drainAll() []Record {
	if r.count == 0 {
		return nil
	}

	result := make([]Record, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	r.count = 0
	r.head = 0
	r.overflow = false
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
