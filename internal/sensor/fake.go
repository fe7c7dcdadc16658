package sensor

import "errors"

// ErrNoSamples is returned by fakes that have no scripted samples.
var ErrNoSamples = errors.New("no samples configured")

// FakeFlex is a test double that returns scripted flex values.
type FakeFlex struct {
	// Samples contains scripted raw values. Each call to ReadFlex consumes
	// the next one; once exhausted the last value repeats.
	Samples []uint16

	index int

	// Reads counts calls to ReadFlex.
	Reads int

	// Closed tracks if Close was called.
	Closed bool

	// ReadError, if set, will be returned by ReadFlex.
	ReadError error
}

// NewFakeFlex creates a FakeFlex with the given samples.
func NewFakeFlex(samples ...uint16) *FakeFlex {
	return &FakeFlex{Samples: samples}
}

// ReadFlex returns the next scripted sample.
func (f *FakeFlex) ReadFlex() (uint16, error) {
	f.Reads++
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, ErrNoSamples
	}

	v := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the reader as closed.
func (f *FakeFlex) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds to the first sample.
func (f *FakeFlex) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}

// Triple is one scripted accelerometer reading.
type Triple struct {
	X, Y, Z int16
}

// FakeMotion is a test double that returns scripted accelerometer counts.
// Reading AxisZ advances to the next sample, so the X, Y, Z order of
// ReadMotion consumes exactly one sample.
type FakeMotion struct {
	Samples []Triple

	index int

	// Configured tracks if Configure was called.
	Configured bool

	// Closed tracks if Close was called.
	Closed bool

	// ConfigureError, if set, will be returned by Configure.
	ConfigureError error

	// ReadError, if set, will be returned by ReadAxis.
	ReadError error
}

// NewFakeMotion creates a FakeMotion with the given samples.
func NewFakeMotion(samples ...Triple) *FakeMotion {
	return &FakeMotion{Samples: samples}
}

// Configure records the call.
func (f *FakeMotion) Configure() error {
	if f.ConfigureError != nil {
		return f.ConfigureError
	}
	f.Configured = true
	return nil
}

// ReadAxis returns one axis of the current scripted sample.
func (f *FakeMotion) ReadAxis(axis Axis) (int16, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if !f.Configured {
		return 0, errors.New("motion sensor not configured")
	}
	if len(f.Samples) == 0 {
		return 0, ErrNoSamples
	}

	s := f.Samples[f.index]
	switch axis {
	case AxisX:
		return s.X, nil
	case AxisY:
		return s.Y, nil
	case AxisZ:
		if f.index < len(f.Samples)-1 {
			f.index++
		}
		return s.Z, nil
	}
	return 0, errors.New("invalid axis")
}

// Close marks the reader as closed.
func (f *FakeMotion) Close() error {
	f.Closed = true
	return nil
}
