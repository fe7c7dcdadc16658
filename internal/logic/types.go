// Package logic contains the pure signal-conditioning and rep-detection pipeline.
// This package has NO external I/O (no sensors, actuators, OS, clocks or time.Sleep).
// Every function takes the current values as parameters and returns new values.
package logic

import "time"

// Smoothing coefficients. Flex tracks more slowly than the motion axes
// because the sensor's mechanical response has a lower bandwidth.
const (
	FlexAlpha   float32 = 0.2
	MotionAlpha float32 = 0.5
)

// Rep thresholds, in flex units. Must satisfy FallThreshold < RiseThreshold < PeakThreshold.
const (
	FallThreshold float32 = 40
	RiseThreshold float32 = 50
	PeakThreshold float32 = 130
)

// MotionThreshold is the dead-zone for per-cycle movement magnitude, in g.
const MotionThreshold float32 = 0.01

// GravityPerLSB converts raw accelerometer counts (±2g, 16 bit) to g.
const GravityPerLSB float32 = 0.000061

// Feedback tones.
const (
	SuccessToneHz  uint32        = 2000
	FailToneHz     uint32        = 500
	FeedbackDuty   uint8         = 50
	FeedbackActive time.Duration = 200 * time.Millisecond
)

// Direction is the dominant motion direction for one cycle.
type Direction uint8

const (
	DirStill Direction = iota
	DirLeft
	DirRight
	DirForward
	DirBack
	DirUp
	DirDown
)

// String returns the upper-case label used in diagnostic records.
func (d Direction) String() string {
	switch d {
	case DirStill:
		return "STILL"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	case DirForward:
		return "FORWARD"
	case DirBack:
		return "BACK"
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	}
	return "UNKNOWN"
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "STILL":
		return DirStill, true
	case "LEFT":
		return DirLeft, true
	case "RIGHT":
		return DirRight, true
	case "FORWARD":
		return DirForward, true
	case "BACK":
		return DirBack, true
	case "UP":
		return DirUp, true
	case "DOWN":
		return DirDown, true
	}
	return DirStill, false
}

// FilterState holds one smoothed accumulator per channel. Zero value is the
// power-on state.
type FilterState struct {
	Flex float32
	X    float32
	Y    float32
	Z    float32
}

// RawSample is one cycle of unscaled sensor readings.
type RawSample struct {
	Flex uint16
	X    int16
	Y    int16
	Z    int16
}

// MotionSample is a smoothed accelerometer triple in g.
type MotionSample struct {
	X float32
	Y float32
	Z float32
}

// MotionClassification is created fresh every cycle.
type MotionClassification struct {
	Direction Direction
	Magnitude float32
}

// Phase is the rep counter state.
type Phase uint8

const (
	PhaseSteady Phase = iota
	PhaseRising
)

func (p Phase) String() string {
	if p == PhaseRising {
		return "RISING"
	}
	return "STEADY"
}

// RepState is the rep counter's internal state.
type RepState struct {
	Phase Phase
	// Only meaningful while Phase == PhaseRising.
	PeakReached bool
	Count       uint32
}

// RepEvent is emitted once per completed repetition attempt.
type RepEvent struct {
	Success bool
	Count   uint32
}

// FeedbackCommand tells the actuator what to play for one rep.
type FeedbackCommand struct {
	ToneHz      uint32
	DutyPercent uint8
	Active      time.Duration
}
