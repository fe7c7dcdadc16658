// Package status provides a thread-safe session tracker for the rep logger.
// It is fed parsed diagnostic records and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rep-counter/internal/diag"
	"github.com/sweeney/rep-counter/internal/logic"
)

// DefaultHistory is how many records the tracker keeps for /data.
const DefaultHistory = 50000

// Config contains logger configuration for display.
type Config struct {
	Port       string
	Baud       int
	HTTPAddr   string
	CSVPath    string
	Downsample int
}

// Sample is one received record with its arrival time and sequence number.
type Sample struct {
	Seq    uint64
	Time   time.Time
	Record diag.Record
}

// Snapshot is a point-in-time view of the session.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Latest          Sample
	HasRecord       bool
	Records         uint64
	Skipped         uint64
	Reps            uint32
	Successes       uint32
	Fails           uint32
	FirstRepAt      time.Time
	LastRepAt       time.Time
	MeanMagnitude   float64
	StartTime       time.Time
	Now             time.Time
	SerialConnected bool
	Config          Config
}

// Uptime returns the duration since the logger started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable session state behind an RWMutex.
type Tracker struct {
	mu       sync.RWMutex
	snap     Snapshot
	magSum   float64
	history  []Sample
	maxHist  int
	subs     map[int]chan Sample
	nextSub  int
	nowFunc  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		maxHist: DefaultHistory,
		subs:    make(map[int]chan Sample),
		nowFunc: time.Now,
	}
}

// SetHistoryLimit caps the number of retained records.
func (t *Tracker) SetHistoryLimit(n int) {
	if n < 1 {
		n = 1
	}
	t.mu.Lock()
	t.maxHist = n
	if len(t.history) > n {
		t.history = append([]Sample(nil), t.history[len(t.history)-n:]...)
	}
	t.mu.Unlock()
}

// Observe records one received diagnostic record.
func (t *Tracker) Observe(rec diag.Record, at time.Time) Sample {
	t.mu.Lock()

	t.snap.Records++
	s := Sample{Seq: t.snap.Records, Time: at, Record: rec}
	t.snap.Latest = s
	t.snap.HasRecord = true
	t.snap.Reps = rec.RepCount

	t.magSum += float64(rec.Magnitude)
	t.snap.MeanMagnitude = t.magSum / float64(t.snap.Records)

	if success, ok := logic.OutcomeForTone(rec.BeepHz); ok {
		if success {
			t.snap.Successes++
		} else {
			t.snap.Fails++
		}
		if t.snap.FirstRepAt.IsZero() {
			t.snap.FirstRepAt = at
		}
		t.snap.LastRepAt = at
	}

	t.history = append(t.history, s)
	if len(t.history) > t.maxHist {
		// Shift in bulk to amortize the copy
		drop := len(t.history) - t.maxHist
		if drop < t.maxHist/4 {
			drop = t.maxHist / 4
		}
		if drop < 1 {
			drop = 1
		}
		t.history = append(t.history[:0], t.history[drop:]...)
	}

	subs := make([]chan Sample, 0, len(t.subs))
	for _, ch := range t.subs {
		subs = append(subs, ch)
	}
	t.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- s:
		default:
			// Slow subscriber; it will catch up on the next record.
		}
	}
	return s
}

// AddSkipped counts malformed lines.
func (t *Tracker) AddSkipped(n int) {
	t.mu.Lock()
	t.snap.Skipped += uint64(n)
	t.mu.Unlock()
}

// SetSerialConnected sets the serial link status.
func (t *Tracker) SetSerialConnected(connected bool) {
	t.mu.Lock()
	t.snap.SerialConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the session state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	now := t.nowFunc
	t.mu.RUnlock()
	s.Now = now()
	return s
}

// History returns every stride-th retained record by sequence number, plus
// always the newest one. stride <= 1 returns everything.
func (t *Tracker) History(stride int) []Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if stride <= 1 {
		out := make([]Sample, len(t.history))
		copy(out, t.history)
		return out
	}

	var out []Sample
	for _, s := range t.history {
		if s.Seq%uint64(stride) == 0 {
			out = append(out, s)
		}
	}
	if n := len(t.history); n > 0 {
		last := t.history[n-1]
		if len(out) == 0 || out[len(out)-1].Seq != last.Seq {
			out = append(out, last)
		}
	}
	return out
}

// Subscribe returns a channel receiving every new sample and a function
// that unsubscribes. Samples are dropped for a subscriber that falls behind.
func (t *Tracker) Subscribe(buffer int) (<-chan Sample, func()) {
	ch := make(chan Sample, buffer)

	t.mu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.subs, id)
			t.mu.Unlock()
		})
	}
}
