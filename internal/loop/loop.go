// Package loop runs the fixed-cadence acquisition cycle:
// acquire -> filter -> rep state -> feedback -> classify -> emit -> wait.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/rep-counter/internal/actuator"
	"github.com/sweeney/rep-counter/internal/diag"
	"github.com/sweeney/rep-counter/internal/logic"
	"github.com/sweeney/rep-counter/internal/sensor"
)

// Period is the fixed cycle length.
const Period = 20 * time.Millisecond

// DefaultHeartbeat is how often a summary line is logged.
const DefaultHeartbeat = 5 * time.Minute

// Stats summarizes the session so far.
type Stats struct {
	Cycles    uint64
	Overruns  uint64
	Reps      uint32
	Successes uint32
	Fails     uint32
	Uptime    time.Duration
}

// Loop owns the filter, motion and rep state and drives the collaborators.
type Loop struct {
	flex   sensor.FlexReader
	motion sensor.MotionReader
	act    actuator.Actuator
	sink   diag.Sink
	clock  Clock

	period    time.Duration
	heartbeat time.Duration

	filters logic.FilterState
	prev    logic.MotionSample
	reps    *logic.RepCounter

	start         time.Time
	lastHeartbeat time.Time
	stats         Stats
}

// Option configures a Loop.
type Option func(*Loop)

// WithPeriod overrides the cycle period (tests and simulation only).
func WithPeriod(d time.Duration) Option {
	return func(l *Loop) { l.period = d }
}

// WithHeartbeat sets the heartbeat log interval; 0 disables it.
func WithHeartbeat(d time.Duration) Option {
	return func(l *Loop) { l.heartbeat = d }
}

// New creates a loop. Nothing touches hardware until Start.
func New(flex sensor.FlexReader, motion sensor.MotionReader, act actuator.Actuator, sink diag.Sink, clock Clock, opts ...Option) *Loop {
	l := &Loop{
		flex:      flex,
		motion:    motion,
		act:       act,
		sink:      sink,
		clock:     clock,
		period:    Period,
		heartbeat: DefaultHeartbeat,
		reps:      logic.NewRepCounter(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Start configures the motion sensor and makes sure the actuator is silent.
func (l *Loop) Start() error {
	if err := l.motion.Configure(); err != nil {
		return fmt.Errorf("configure motion sensor: %w", err)
	}
	if err := l.act.SetDutyCycle(0); err != nil {
		return fmt.Errorf("silence actuator: %w", err)
	}
	l.start = l.clock.Now()
	l.lastHeartbeat = l.start
	return nil
}

// Step runs one cycle without the trailing wait and returns the record it
// emitted. Any collaborator fault aborts the cycle and is returned.
func (l *Loop) Step(ctx context.Context) (diag.Record, error) {
	rawFlex, err := l.flex.ReadFlex()
	if err != nil {
		return diag.Record{}, fmt.Errorf("read flex: %w", err)
	}
	x, y, z, err := sensor.ReadMotion(l.motion)
	if err != nil {
		return diag.Record{}, fmt.Errorf("read motion: %w", err)
	}

	l.filters = l.filters.Update(logic.RawSample{Flex: rawFlex, X: x, Y: y, Z: z})

	var beep uint32
	if ev, ok := l.reps.OnSample(l.filters.Flex); ok {
		cmd := logic.Decide(ev)
		l.countRep(ev, cmd)
		beep = cmd.ToneHz
		if err := l.play(ctx, cmd); err != nil {
			return diag.Record{}, err
		}
	}

	cur := l.filters.Motion()
	cls := logic.Classify(cur, l.prev, logic.MotionThreshold)
	l.prev = cur

	rec := diag.NewRecord(l.filters, cls, l.reps.Count(), beep)
	l.sink.Emit(rec)
	l.stats.Cycles++
	return rec, nil
}

// play sounds the command for its active duration. Acquisition is paused
// for the hold; the actuator is always silenced afterwards.
func (l *Loop) play(ctx context.Context, cmd logic.FeedbackCommand) error {
	if err := l.act.SetTone(cmd.ToneHz); err != nil {
		return fmt.Errorf("set tone: %w", err)
	}
	if err := l.act.SetDutyCycle(cmd.DutyPercent); err != nil {
		return fmt.Errorf("set duty: %w", err)
	}

	holdErr := l.clock.Sleep(ctx, cmd.Active)

	if err := l.act.SetDutyCycle(0); err != nil {
		return fmt.Errorf("silence: %w", err)
	}
	return holdErr
}

func (l *Loop) countRep(ev logic.RepEvent, cmd logic.FeedbackCommand) {
	outcome := "fail"
	if ev.Success {
		l.stats.Successes++
		outcome = "success"
	} else {
		l.stats.Fails++
	}
	log.Printf("rep: #%d %s tone=%dHz", ev.Count, outcome, cmd.ToneHz)
}

// Run cycles until ctx is done or a collaborator fails. Each cycle starts
// one period after the previous cycle's deadline; a cycle that overruns
// re-anchors the schedule to now instead of bursting to catch up.
// Cancellation is a clean shutdown and returns nil.
func (l *Loop) Run(ctx context.Context) error {
	next := l.clock.Now()
	for {
		if ctx.Err() != nil {
			return nil
		}

		if _, err := l.Step(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		now := l.clock.Now()
		l.checkHeartbeat(now)

		next = next.Add(l.period)
		if !now.Before(next) {
			l.stats.Overruns++
			next = now
			continue
		}
		if err := l.clock.Sleep(ctx, next.Sub(now)); err != nil {
			return nil
		}
	}
}

// checkHeartbeat logs a summary once per heartbeat interval.
func (l *Loop) checkHeartbeat(now time.Time) {
	if l.heartbeat <= 0 || now.Sub(l.lastHeartbeat) < l.heartbeat {
		return
	}
	l.lastHeartbeat = now
	s := l.Stats()
	log.Printf("heartbeat: uptime=%v cycles=%d overruns=%d reps=%d success=%d fail=%d",
		s.Uptime.Truncate(time.Second), s.Cycles, s.Overruns, s.Reps, s.Successes, s.Fails)
}

// Stats returns a copy of the session counters.
func (l *Loop) Stats() Stats {
	s := l.stats
	s.Reps = l.reps.Count()
	if !l.start.IsZero() {
		s.Uptime = l.clock.Now().Sub(l.start)
	}
	return s
}

// RepState returns the rep counter state.
func (l *Loop) RepState() logic.RepState {
	return l.reps.State()
}

// Filters returns the current smoothed values.
func (l *Loop) Filters() logic.FilterState {
	return l.filters
}

// Close silences the actuator.
func (l *Loop) Close() error {
	return l.act.SetDutyCycle(0)
}
