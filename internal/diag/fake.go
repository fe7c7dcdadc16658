package diag

import "sync"

// FakeSink records emitted records for test assertions.
type FakeSink struct {
	mu      sync.Mutex
	records []Record
}

// NewFakeSink creates a FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// Emit records the record.
func (f *FakeSink) Emit(rec Record) {
	f.mu.Lock()
	f.records = append(f.records, rec)
	f.mu.Unlock()
}

// Records returns a copy of everything emitted so far.
func (f *FakeSink) Records() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Record, len(f.records))
	copy(out, f.records)
	return out
}

// Reset clears recorded records.
func (f *FakeSink) Reset() {
	f.mu.Lock()
	f.records = nil
	f.mu.Unlock()
}
