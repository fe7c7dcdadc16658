// Package actuator drives the audio feedback hardware.
// The real implementations are a PWM buzzer (periph.io) and an indicator LED
// on a GPIO character device line. The fake records calls for tests.
package actuator

import "fmt"

// Actuator plays a tone. The caller owns on/off sequencing: SetTone selects
// the pitch, SetDutyCycle(0) silences, any other duty sounds the tone.
type Actuator interface {
	// SetTone selects the output frequency. It does not start output.
	SetTone(hz uint32) error

	// SetDutyCycle sets the output duty in percent (0-100).
	SetDutyCycle(percent uint8) error

	// Close silences the output and releases the hardware.
	Close() error
}

// Multi drives several actuators in lockstep.
type Multi []Actuator

// SetTone forwards to every actuator, stopping at the first error.
func (m Multi) SetTone(hz uint32) error {
	for i, a := range m {
		if err := a.SetTone(hz); err != nil {
			return fmt.Errorf("actuator %d: set tone: %w", i, err)
		}
	}
	return nil
}

// SetDutyCycle forwards to every actuator, stopping at the first error.
func (m Multi) SetDutyCycle(percent uint8) error {
	for i, a := range m {
		if err := a.SetDutyCycle(percent); err != nil {
			return fmt.Errorf("actuator %d: set duty: %w", i, err)
		}
	}
	return nil
}

// Close closes every actuator and reports all failures.
func (m Multi) Close() error {
	var errs []error
	for i, a := range m {
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("actuator %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func checkDuty(percent uint8) error {
	if percent > 100 {
		return fmt.Errorf("duty %d%% out of range", percent)
	}
	return nil
}
