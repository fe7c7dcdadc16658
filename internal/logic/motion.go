package logic

import "github.com/chewxy/math32"

// Classify labels the movement between two consecutive smoothed motion samples.
//
// Movement at or below threshold is STILL whatever the axis signs. Otherwise
// the axis with the largest absolute delta wins and its sign picks the pole:
// X is RIGHT/LEFT, Y is FORWARD/BACK, Z is UP/DOWN. Ties go to X, then Y, then Z.
//
// This is a single-axis-dominant heuristic, not 3-D gesture recognition: a
// diagonal movement is reported as whichever axis moved slightly more.
func Classify(current, previous MotionSample, threshold float32) MotionClassification {
	dx := current.X - previous.X
	dy := current.Y - previous.Y
	dz := current.Z - previous.Z

	mag := math32.Sqrt(dx*dx + dy*dy + dz*dz)
	if mag <= threshold {
		return MotionClassification{Direction: DirStill, Magnitude: mag}
	}

	ax, ay, az := math32.Abs(dx), math32.Abs(dy), math32.Abs(dz)

	var dir Direction
	switch {
	case ax >= ay && ax >= az:
		dir = pole(dx, DirRight, DirLeft)
	case ay >= az:
		dir = pole(dy, DirForward, DirBack)
	default:
		dir = pole(dz, DirUp, DirDown)
	}
	return MotionClassification{Direction: dir, Magnitude: mag}
}

func pole(d float32, positive, negative Direction) Direction {
	if d > 0 {
		return positive
	}
	return negative
}

// Stability is the sum of squared smoothed axes. It is an opaque relative
// stillness indicator for diagnostics and is not square-rooted.
func Stability(m MotionSample) float32 {
	return m.X*m.X + m.Y*m.Y + m.Z*m.Z
}
