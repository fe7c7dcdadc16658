package diag

import (
	"bufio"
	"io"
	"log"
	"strings"
	"sync"
)

// Sink receives one record per cycle. Emit is fire-and-forget: it never
// blocks on the consumer and reports nothing back to the loop.
type Sink interface {
	Emit(rec Record)
}

// WriterSink writes record lines to an io.Writer (a serial port, stdout).
// Write failures are logged once per failure streak.
type WriterSink struct {
	mu      sync.Mutex
	w       io.Writer
	buf     []byte
	failing bool
	errors  uint64
}

// NewWriterSink creates a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Emit writes one line.
func (s *WriterSink) Emit(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buf = rec.AppendLine(s.buf[:0])
	if _, err := s.w.Write(s.buf); err != nil {
		s.errors++
		if !s.failing {
			log.Printf("diag: write error: %v", err)
			s.failing = true
		}
		return
	}
	if s.failing {
		log.Printf("diag: write recovered after %d errors", s.errors)
		s.failing = false
	}
}

// Errors returns the number of failed writes.
func (s *WriterSink) Errors() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors
}

// Scan reads record lines from r until EOF, calling handle for each valid
// record. Malformed lines are skipped and counted.
func Scan(r io.Reader, handle func(Record)) (skipped int, err error) {
	err = ScanFunc(r, handle, func(string, error) { skipped++ })
	return skipped, err
}

// ScanFunc is like Scan but reports each malformed line to skip as it is
// read. A nil skip ignores them.
func ScanFunc(r io.Reader, handle func(Record), skip func(line string, err error)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			if skip != nil {
				skip(line, err)
			}
			continue
		}
		handle(rec)
	}
	return sc.Err()
}
