package logic

import (
	"math/rand"
	"testing"
)

func TestSmoothFormula(t *testing.T) {
	got := Smooth(10, 20, 0.25)
	if got != 12.5 {
		t.Errorf("Smooth(10, 20, 0.25): got %v, want 12.5", got)
	}

	// alpha = 1 tracks the raw value exactly
	if got := Smooth(123, 7, 1); got != 7 {
		t.Errorf("Smooth with alpha=1: got %v, want 7", got)
	}
}

func TestSmoothConvergesMonotonically(t *testing.T) {
	for _, alpha := range []float32{FlexAlpha, MotionAlpha, 0.01, 1} {
		var v float32
		const r = 1000
		prev := v
		for i := 0; i < 5000; i++ {
			v = Smooth(v, r, alpha)
			if v < prev {
				t.Fatalf("alpha=%v step %d: decreased from %v to %v", alpha, i, prev, v)
			}
			if v > r {
				t.Fatalf("alpha=%v step %d: overshot to %v", alpha, i, v)
			}
			prev = v
		}
		if r-v > 0.01 {
			t.Errorf("alpha=%v: did not converge, got %v", alpha, v)
		}
	}
}

func TestSmoothBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const lo, hi = -3.5, 250.0

	for _, alpha := range []float32{FlexAlpha, MotionAlpha, 0.9} {
		v := float32(lo)
		for i := 0; i < 100000; i++ {
			raw := float32(lo) + float32(rng.Intn(2535))/10
			v = Smooth(v, raw, alpha)
			if v < lo || v > hi {
				t.Fatalf("alpha=%v step %d: %v escaped [%v, %v]", alpha, i, v, lo, hi)
			}
		}
	}
}

func TestScaleAxis(t *testing.T) {
	if got := ScaleAxis(0); got != 0 {
		t.Errorf("ScaleAxis(0): got %v, want 0", got)
	}
	if got := ScaleAxis(-16393); !approx(got, -ScaleAxis(16393)) {
		t.Errorf("ScaleAxis should be symmetric, got %v", got)
	}
	// ~1g at 16393 counts
	if g := ScaleAxis(16393); g < 0.99 || g > 1.01 {
		t.Errorf("ScaleAxis(16393): got %v, want about 1g", g)
	}
}

func TestFilterStateUpdate(t *testing.T) {
	var s FilterState
	s = s.Update(RawSample{Flex: 100, X: 1000, Y: -1000, Z: 16393})

	if !approx(s.Flex, 100*FlexAlpha) {
		t.Errorf("Flex: got %v, want %v", s.Flex, 100*FlexAlpha)
	}
	if s.X <= 0 || s.Y >= 0 || s.Z <= 0 {
		t.Errorf("axes have wrong signs: %+v", s)
	}

	m := s.Motion()
	if m.X != s.X || m.Y != s.Y || m.Z != s.Z {
		t.Errorf("Motion: got %+v, want axes of %+v", m, s)
	}
}

func TestFilterStateUpdateDoesNotMutateReceiver(t *testing.T) {
	s := FilterState{Flex: 10}
	_ = s.Update(RawSample{Flex: 500})
	if s.Flex != 10 {
		t.Errorf("receiver changed: %+v", s)
	}
}

func TestFlexTracksSlowerThanMotion(t *testing.T) {
	if FlexAlpha >= MotionAlpha {
		t.Errorf("FlexAlpha (%v) should be below MotionAlpha (%v)", FlexAlpha, MotionAlpha)
	}
}

func approx(a, b float32) bool {
	d := a - b
	return d < 1e-4 && d > -1e-4
}
