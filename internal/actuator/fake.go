package actuator

// Call is one recorded actuator call.
type Call struct {
	Op    string // "tone" or "duty"
	Value uint32
}

// Fake records actuator calls for test assertions.
type Fake struct {
	// Calls contains every SetTone/SetDutyCycle in order.
	Calls []Call

	// ToneHz and Duty are the current settings.
	ToneHz uint32
	Duty   uint8

	// ToneError and DutyError, if set, are returned by the matching call.
	ToneError error
	DutyError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFake creates a Fake actuator.
func NewFake() *Fake {
	return &Fake{}
}

// SetTone records the tone.
func (f *Fake) SetTone(hz uint32) error {
	if f.ToneError != nil {
		return f.ToneError
	}
	f.ToneHz = hz
	f.Calls = append(f.Calls, Call{Op: "tone", Value: hz})
	return nil
}

// SetDutyCycle records the duty.
func (f *Fake) SetDutyCycle(percent uint8) error {
	if f.DutyError != nil {
		return f.DutyError
	}
	if err := checkDuty(percent); err != nil {
		return err
	}
	f.Duty = percent
	f.Calls = append(f.Calls, Call{Op: "duty", Value: uint32(percent)})
	return nil
}

// Sounding reports whether output is currently on.
func (f *Fake) Sounding() bool {
	return f.Duty > 0
}

// Close silences the fake.
func (f *Fake) Close() error {
	f.Duty = 0
	f.Closed = true
	return nil
}

// Reset clears recorded calls.
func (f *Fake) Reset() {
	f.Calls = nil
	f.ToneHz = 0
	f.Duty = 0
	f.ToneError = nil
	f.DutyError = nil
	f.Closed = false
}
