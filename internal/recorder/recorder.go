// Package recorder writes received diagnostic records to a CSV session log.
package recorder

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sweeney/rep-counter/internal/diag"
)

// Header is the first row of every session file.
var Header = []string{
	"Timestamp",
	"Flex_Value",
	"Accel_X",
	"Accel_Y",
	"Accel_Z",
	"Stability",
	"Magnitude",
	"Direction",
	"Rep_Count",
	"Beep_Freq",
}

// Recorder appends one timestamped row per record and flushes after each.
type Recorder struct {
	w      *csv.Writer
	closer io.Closer
	rows   int
}

// New writes the header to w and returns a Recorder on it.
func New(w io.Writer) (*Recorder, error) {
	r := &Recorder{w: csv.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		r.closer = c
	}
	if err := r.w.Write(Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return r, nil
}

// Create truncates or creates the file at path and starts a session in it.
func Create(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	r, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// Write appends rec stamped with the wall-clock time at.
func (r *Recorder) Write(at time.Time, rec diag.Record) error {
	row := append([]string{at.Format("15:04:05")}, rec.Fields()...)
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flush row: %w", err)
	}
	r.rows++
	return nil
}

// Rows returns the number of records written.
func (r *Recorder) Rows() int {
	return r.rows
}

// Close flushes and closes the underlying file, if any.
func (r *Recorder) Close() error {
	r.w.Flush()
	err := r.w.Error()
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
