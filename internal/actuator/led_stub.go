//go:build !linux

package actuator

import "errors"

// LED is not available on non-Linux platforms.
type LED struct{}

// NewLED returns an error on non-Linux platforms.
func NewLED(chipName string, offset int) (*LED, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetTone is not implemented on non-Linux platforms.
func (l *LED) SetTone(hz uint32) error {
	return errors.New("gpio: not supported")
}

// SetDutyCycle is not implemented on non-Linux platforms.
func (l *LED) SetDutyCycle(percent uint8) error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (l *LED) Close() error {
	return nil
}
