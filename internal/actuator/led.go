//go:build linux

package actuator

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// LED lights an indicator line while the buzzer sounds. Tone is ignored.
type LED struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewLED requests the line as an output, initially off.
func NewLED(chipName string, offset int) (*LED, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request LED line %d: %w", offset, err)
	}

	return &LED{chip: chip, line: line}, nil
}

// SetTone is a no-op for the LED.
func (l *LED) SetTone(hz uint32) error {
	return nil
}

// SetDutyCycle turns the LED on for any non-zero duty.
func (l *LED) SetDutyCycle(percent uint8) error {
	if err := checkDuty(percent); err != nil {
		return err
	}
	v := 0
	if percent > 0 {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return fmt.Errorf("set LED: %w", err)
	}
	return nil
}

// Close turns the LED off and returns the line to input with pull-down,
// matching the Pi boot default.
func (l *LED) Close() error {
	var errs []error

	if l.line != nil {
		if err := l.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("LED off: %w", err))
		}
		if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure LED line: %w", err))
		}
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED line: %w", err))
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
