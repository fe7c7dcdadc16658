package loop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/rep-counter/internal/actuator"
	"github.com/sweeney/rep-counter/internal/diag"
	"github.com/sweeney/rep-counter/internal/logic"
	"github.com/sweeney/rep-counter/internal/sensor"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// rest is an accelerometer lying flat: 1g on Z.
var rest = sensor.Triple{X: 0, Y: 0, Z: 16393}

func repeat(v uint16, n int) []uint16 {
	out := make([]uint16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func script(parts ...[]uint16) []uint16 {
	var out []uint16
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

type rig struct {
	flex   *sensor.FakeFlex
	motion *sensor.FakeMotion
	act    *actuator.Fake
	sink   *diag.FakeSink
	clock  *FakeClock
	loop   *Loop
}

func newRig(t *testing.T, flex []uint16, motion ...sensor.Triple) *rig {
	t.Helper()
	if len(motion) == 0 {
		motion = []sensor.Triple{rest}
	}
	r := &rig{
		flex:   sensor.NewFakeFlex(flex...),
		motion: sensor.NewFakeMotion(motion...),
		act:    actuator.NewFake(),
		sink:   diag.NewFakeSink(),
		clock:  NewFakeClock(t0),
	}
	r.loop = New(r.flex, r.motion, r.act, r.sink, r.clock, WithHeartbeat(0))
	if err := r.loop.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return r
}

func (r *rig) steps(t *testing.T, n int) []diag.Record {
	t.Helper()
	var recs []diag.Record
	for i := 0; i < n; i++ {
		rec, err := r.loop.Step(context.Background())
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		recs = append(recs, rec)
	}
	return recs
}

func beeps(recs []diag.Record) []uint32 {
	var out []uint32
	for _, r := range recs {
		if r.BeepHz != 0 {
			out = append(out, r.BeepHz)
		}
	}
	return out
}

func TestStartConfiguresAndSilences(t *testing.T) {
	r := newRig(t, []uint16{0})

	if !r.motion.Configured {
		t.Error("motion sensor not configured")
	}
	if len(r.act.Calls) != 1 || r.act.Calls[0] != (actuator.Call{Op: "duty", Value: 0}) {
		t.Errorf("expected a single silence call, got %+v", r.act.Calls)
	}
}

func TestStartConfigureError(t *testing.T) {
	motion := sensor.NewFakeMotion(rest)
	sentinel := errors.New("bus fault")
	motion.ConfigureError = sentinel

	l := New(sensor.NewFakeFlex(0), motion, actuator.NewFake(), diag.NewFakeSink(), NewFakeClock(t0))
	if err := l.Start(); !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped sentinel, got %v", err)
	}
}

func TestStepSuccessfulRep(t *testing.T) {
	flex := script(repeat(0, 5), repeat(200, 30), repeat(0, 30))
	r := newRig(t, flex)

	recs := r.steps(t, len(flex))

	if got := beeps(recs); len(got) != 1 || got[0] != logic.SuccessToneHz {
		t.Fatalf("expected one success beep, got %v", got)
	}
	if last := recs[len(recs)-1]; last.RepCount != 1 {
		t.Errorf("final RepCount: got %d, want 1", last.RepCount)
	}

	want := []actuator.Call{
		{Op: "duty", Value: 0},
		{Op: "tone", Value: logic.SuccessToneHz},
		{Op: "duty", Value: uint32(logic.FeedbackDuty)},
		{Op: "duty", Value: 0},
	}
	if len(r.act.Calls) != len(want) {
		t.Fatalf("actuator calls: got %+v", r.act.Calls)
	}
	for i := range want {
		if r.act.Calls[i] != want[i] {
			t.Errorf("call %d: got %+v, want %+v", i, r.act.Calls[i], want[i])
		}
	}
	if r.act.Sounding() {
		t.Error("actuator left sounding")
	}

	if len(r.clock.Sleeps) != 1 || r.clock.Sleeps[0] != logic.FeedbackActive {
		t.Errorf("expected one hold of %v, got %v", logic.FeedbackActive, r.clock.Sleeps)
	}

	s := r.loop.Stats()
	if s.Reps != 1 || s.Successes != 1 || s.Fails != 0 {
		t.Errorf("stats: %+v", s)
	}
	if s.Cycles != uint64(len(flex)) {
		t.Errorf("Cycles: got %d, want %d", s.Cycles, len(flex))
	}
}

func TestStepFailedRep(t *testing.T) {
	// Settles around 100: above RISE, never above PEAK
	flex := script(repeat(0, 5), repeat(100, 40), repeat(0, 30))
	r := newRig(t, flex)

	recs := r.steps(t, len(flex))

	if got := beeps(recs); len(got) != 1 || got[0] != logic.FailToneHz {
		t.Fatalf("expected one fail beep, got %v", got)
	}
	s := r.loop.Stats()
	if s.Reps != 1 || s.Fails != 1 || s.Successes != 0 {
		t.Errorf("stats: %+v", s)
	}
}

func TestStepEmitsEveryCycle(t *testing.T) {
	r := newRig(t, []uint16{10, 20, 30})
	recs := r.steps(t, 3)

	emitted := r.sink.Records()
	if len(emitted) != 3 {
		t.Fatalf("expected 3 emitted records, got %d", len(emitted))
	}
	for i := range recs {
		if emitted[i] != recs[i] {
			t.Errorf("record %d: emitted %+v, returned %+v", i, emitted[i], recs[i])
		}
	}
	if emitted[2].Flex <= emitted[1].Flex {
		t.Error("smoothed flex should rise with rising input")
	}
}

func TestStepClassifiesAgainstPreviousCycle(t *testing.T) {
	motion := make([]sensor.Triple, 0, 30)
	for i := 0; i < 20; i++ {
		motion = append(motion, rest)
	}
	// Sharp move along +X
	motion = append(motion, sensor.Triple{X: 8000, Y: 0, Z: 16393})

	r := newRig(t, []uint16{0}, motion...)
	recs := r.steps(t, 21)

	if recs[0].Direction != logic.DirUp {
		t.Errorf("first cycle from zeroed filters: got %s, want UP", recs[0].Direction)
	}
	if recs[19].Direction != logic.DirStill {
		t.Errorf("settled cycle: got %s, want STILL", recs[19].Direction)
	}
	if recs[20].Direction != logic.DirRight {
		t.Errorf("move cycle: got %s, want RIGHT", recs[20].Direction)
	}
	if recs[20].Magnitude <= logic.MotionThreshold {
		t.Errorf("move magnitude too small: %v", recs[20].Magnitude)
	}
}

func TestStepFlexErrorAbortsCycle(t *testing.T) {
	r := newRig(t, []uint16{0})
	sentinel := errors.New("adc timeout")
	r.flex.ReadError = sentinel

	_, err := r.loop.Step(context.Background())
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
	if len(r.sink.Records()) != 0 {
		t.Error("no record should be emitted for a failed cycle")
	}
}

func TestStepMotionErrorAbortsCycle(t *testing.T) {
	r := newRig(t, []uint16{0})
	sentinel := errors.New("nack")
	r.motion.ReadError = sentinel

	if _, err := r.loop.Step(context.Background()); !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestStepActuatorErrorAbortsCycle(t *testing.T) {
	flex := script(repeat(200, 30), repeat(0, 30))
	r := newRig(t, flex)
	sentinel := errors.New("pwm fault")
	r.act.ToneError = sentinel

	var err error
	for i := 0; i < len(flex) && err == nil; i++ {
		_, err = r.loop.Step(context.Background())
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestRunKeepsCadence(t *testing.T) {
	r := newRig(t, []uint16{0})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.clock.OnSleep = func(time.Duration) {
		if len(r.clock.Sleeps) == 5 {
			cancel()
		}
	}

	if err := r.loop.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, d := range r.clock.Sleeps {
		if d != Period {
			t.Errorf("sleep %d: got %v, want %v", i, d, Period)
		}
	}
	if s := r.loop.Stats(); s.Cycles != 5 || s.Overruns != 0 {
		t.Errorf("stats: %+v", s)
	}
}

// slowFlex spends time on chosen reads.
type slowFlex struct {
	*sensor.FakeFlex
	clock  *FakeClock
	delays map[int]time.Duration
}

func (s *slowFlex) ReadFlex() (uint16, error) {
	v, err := s.FakeFlex.ReadFlex()
	if d, ok := s.delays[s.Reads]; ok {
		s.clock.Advance(d)
	}
	return v, err
}

func TestRunSleepsUntilDeadline(t *testing.T) {
	clock := NewFakeClock(t0)
	flex := &slowFlex{FakeFlex: sensor.NewFakeFlex(0), clock: clock, delays: map[int]time.Duration{2: 5 * time.Millisecond}}
	motion := sensor.NewFakeMotion(rest)
	l := New(flex, motion, actuator.NewFake(), diag.NewFakeSink(), clock, WithHeartbeat(0))
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(time.Duration) {
		if len(clock.Sleeps) == 3 {
			cancel()
		}
	}

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []time.Duration{Period, Period - 5*time.Millisecond, Period}
	if len(clock.Sleeps) != len(want) {
		t.Fatalf("sleeps: got %v, want %v", clock.Sleeps, want)
	}
	for i := range want {
		if clock.Sleeps[i] != want[i] {
			t.Errorf("sleep %d: got %v, want %v", i, clock.Sleeps[i], want[i])
		}
	}
}

func TestRunReanchorsAfterOverrun(t *testing.T) {
	clock := NewFakeClock(t0)
	flex := &slowFlex{FakeFlex: sensor.NewFakeFlex(0), clock: clock, delays: map[int]time.Duration{2: 30 * time.Millisecond}}
	l := New(flex, sensor.NewFakeMotion(rest), actuator.NewFake(), diag.NewFakeSink(), clock, WithHeartbeat(0))
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(time.Duration) {
		if len(clock.Sleeps) == 2 {
			cancel()
		}
	}

	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Cycle 2 overran; cycle 3 starts at once and then waits a full period
	if len(clock.Sleeps) != 2 || clock.Sleeps[0] != Period || clock.Sleeps[1] != Period {
		t.Errorf("sleeps: got %v", clock.Sleeps)
	}
	if s := l.Stats(); s.Overruns != 1 || s.Cycles != 3 {
		t.Errorf("stats: %+v", s)
	}
}

func TestRunReturnsCollaboratorFault(t *testing.T) {
	r := newRig(t, []uint16{0})
	sentinel := errors.New("adc gone")
	r.flex.ReadError = sentinel

	err := r.loop.Run(context.Background())
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped sentinel, got %v", err)
	}
}

func TestRunCancelDuringHoldSilences(t *testing.T) {
	flex := script(repeat(200, 30), repeat(0, 30))
	r := newRig(t, flex)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel only once the feedback hold begins
	r.clock.OnSleep = func(d time.Duration) {
		if r.act.Sounding() {
			cancel()
		}
	}

	if err := r.loop.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.act.Sounding() {
		t.Error("actuator left sounding after cancel")
	}
	if r.loop.Stats().Reps != 1 {
		t.Errorf("Reps: got %d, want 1", r.loop.Stats().Reps)
	}
}

func TestHeartbeatInterval(t *testing.T) {
	clock := NewFakeClock(t0)
	l := New(sensor.NewFakeFlex(0), sensor.NewFakeMotion(rest), actuator.NewFake(), diag.NewFakeSink(), clock, WithHeartbeat(time.Minute))
	if err := l.Start(); err != nil {
		t.Fatal(err)
	}

	l.checkHeartbeat(t0.Add(30 * time.Second))
	if !l.lastHeartbeat.Equal(t0) {
		t.Error("heartbeat fired before interval")
	}

	l.checkHeartbeat(t0.Add(time.Minute))
	if !l.lastHeartbeat.Equal(t0.Add(time.Minute)) {
		t.Error("heartbeat did not fire at interval")
	}
}

func TestRealClockSleepHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := RealClock{}.Sleep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("Sleep did not return promptly")
	}
}

func TestWithPeriodAndStateAccessors(t *testing.T) {
	flex := sensor.NewFakeFlex(script(repeat(0, 2), repeat(200, 10))...)
	clock := NewFakeClock(t0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.OnSleep = func(time.Duration) {
		if len(clock.Sleeps) == 10 {
			cancel()
		}
	}

	l := New(flex, sensor.NewFakeMotion(rest), actuator.NewFake(), diag.NewFakeSink(), clock,
		WithPeriod(50*time.Millisecond), WithHeartbeat(0))
	if err := l.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := l.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, d := range clock.Sleeps {
		if d != 50*time.Millisecond {
			t.Errorf("sleep %d: got %v, want 50ms", i, d)
		}
	}

	st := l.RepState()
	if st.Phase != logic.PhaseRising || !st.PeakReached || st.Count != 0 {
		t.Errorf("rep state: got %+v, want rising with peak, no count", st)
	}
	if f := l.Filters(); f.Flex <= logic.PeakThreshold || f.Z <= 0.9 {
		t.Errorf("filters: got %+v", f)
	}
}
