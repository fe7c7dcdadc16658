package logic

// RepCounter is a two-state hysteresis machine over the smoothed flex signal.
//
// STEADY -> RISING when flex > RiseThreshold.
// RISING -> STEADY when flex < FallThreshold, emitting one RepEvent.
// While RISING, crossing PeakThreshold latches PeakReached; the event is a
// success only if it was latched.
type RepCounter struct {
	state RepState
	rise  float32
	peak  float32
	fall  float32
}

// NewRepCounter creates a counter using the build-time thresholds.
func NewRepCounter() *RepCounter {
	return NewRepCounterWithThresholds(RiseThreshold, PeakThreshold, FallThreshold)
}

// NewRepCounterWithThresholds creates a counter with explicit thresholds.
// The caller must ensure fall < rise < peak; this is not checked.
func NewRepCounterWithThresholds(rise, peak, fall float32) *RepCounter {
	return &RepCounter{rise: rise, peak: peak, fall: fall}
}

// OnSample advances the machine by one smoothed flex value. It returns an
// event and true only on the RISING -> STEADY transition.
func (c *RepCounter) OnSample(flex float32) (RepEvent, bool) {
	switch c.state.Phase {
	case PhaseSteady:
		if flex > c.rise {
			c.state.Phase = PhaseRising
			c.state.PeakReached = false
			// The entry sample can already be above the peak.
			if flex > c.peak {
				c.state.PeakReached = true
			}
		}
		return RepEvent{}, false

	case PhaseRising:
		if flex > c.peak {
			c.state.PeakReached = true
		}
		if flex < c.fall {
			c.state.Count++
			ev := RepEvent{Success: c.state.PeakReached, Count: c.state.Count}
			c.state.Phase = PhaseSteady
			c.state.PeakReached = false
			return ev, true
		}
	}
	return RepEvent{}, false
}

// State returns a copy of the current state.
func (c *RepCounter) State() RepState {
	return c.state
}

// Count returns the number of completed reps since start.
func (c *RepCounter) Count() uint32 {
	return c.state.Count
}
