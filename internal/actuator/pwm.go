package actuator

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

// DefaultBuzzerPin is the hardware PWM pin the piezo buzzer is wired to.
const DefaultBuzzerPin = "GPIO18"

// PWMBuzzer drives a passive piezo buzzer from a hardware PWM pin.
type PWMBuzzer struct {
	pin  gpio.PinIO
	freq physic.Frequency
	duty uint8
}

// NewPWMBuzzer looks up the named pin and drives it low.
func NewPWMBuzzer(pinName string) (*PWMBuzzer, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("buzzer: periph host init: %w", err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("buzzer: pin %q not found", pinName)
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("buzzer: pin %s low: %w", pinName, err)
	}
	return &PWMBuzzer{pin: pin}, nil
}

// SetTone selects the frequency; a sounding buzzer retunes immediately.
func (b *PWMBuzzer) SetTone(hz uint32) error {
	b.freq = physic.Frequency(hz) * physic.Hertz
	if b.duty > 0 {
		return b.apply()
	}
	return nil
}

// SetDutyCycle starts (percent > 0) or stops (0) the output.
func (b *PWMBuzzer) SetDutyCycle(percent uint8) error {
	if err := checkDuty(percent); err != nil {
		return err
	}
	b.duty = percent
	return b.apply()
}

func (b *PWMBuzzer) apply() error {
	if b.duty == 0 || b.freq == 0 {
		if err := b.pin.Out(gpio.Low); err != nil {
			return fmt.Errorf("buzzer off: %w", err)
		}
		return nil
	}
	duty := gpio.DutyMax * gpio.Duty(b.duty) / 100
	if err := b.pin.PWM(duty, b.freq); err != nil {
		return fmt.Errorf("buzzer pwm %s at %s: %w", duty, b.freq, err)
	}
	return nil
}

// Close stops the PWM and leaves the pin low.
func (b *PWMBuzzer) Close() error {
	b.duty = 0
	if err := b.pin.Halt(); err != nil {
		return fmt.Errorf("halt buzzer pin: %w", err)
	}
	return b.pin.Out(gpio.Low)
}
