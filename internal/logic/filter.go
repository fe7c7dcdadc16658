package logic

// Smooth applies one step of an exponential moving average:
// alpha*raw + (1-alpha)*prev. alpha must be in (0, 1].
//
// Written as prev + alpha*(raw-prev) so the result stays between prev and raw
// under float32 rounding.
func Smooth(prev, raw, alpha float32) float32 {
	next := prev + alpha*(raw-prev)
	return clampBetween(next, prev, raw)
}

func clampBetween(v, a, b float32) float32 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ScaleAxis converts a raw accelerometer count to g.
func ScaleAxis(raw int16) float32 {
	return float32(raw) * GravityPerLSB
}

// Update returns the filter state after one cycle of raw readings.
func (s FilterState) Update(raw RawSample) FilterState {
	return FilterState{
		Flex: Smooth(s.Flex, float32(raw.Flex), FlexAlpha),
		X:    Smooth(s.X, ScaleAxis(raw.X), MotionAlpha),
		Y:    Smooth(s.Y, ScaleAxis(raw.Y), MotionAlpha),
		Z:    Smooth(s.Z, ScaleAxis(raw.Z), MotionAlpha),
	}
}

// Motion returns the smoothed accelerometer triple.
func (s FilterState) Motion() MotionSample {
	return MotionSample{X: s.X, Y: s.Y, Z: s.Z}
}
