package sensor

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// RealFlex reads the flex sensor divider through an ADS1115.
type RealFlex struct {
	bus i2c.BusCloser
	pin ads1x15.PinADC
}

var adsChannels = []ads1x15.Channel{
	ads1x15.Channel0,
	ads1x15.Channel1,
	ads1x15.Channel2,
	ads1x15.Channel3,
}

// NewRealFlex opens the I2C bus and the ADC channel wired to the flex sensor.
func NewRealFlex(busName string, addr uint16, channel int) (*RealFlex, error) {
	if channel < 0 || channel >= len(adsChannels) {
		return nil, fmt.Errorf("flex: invalid ADC channel %d", channel)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("flex: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("flex: open i2c bus %q: %w", busName, err)
	}

	opts := ads1x15.DefaultOpts
	opts.I2cAddress = addr
	adc, err := ads1x15.NewADS1115(bus, &opts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("flex: ads1115 at 0x%02X: %w", addr, err)
	}

	// 4.096V full scale covers a 3.3V divider.
	pin, err := adc.PinForChannel(adsChannels[channel], 4096*physic.MilliVolt, 250*physic.Hertz, ads1x15.BestQuality)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("flex: channel %d: %w", channel, err)
	}

	return &RealFlex{bus: bus, pin: pin}, nil
}

// ReadFlex returns a 12 bit reading (0-4095), matching the board ADC the
// rep thresholds were tuned on.
func (r *RealFlex) ReadFlex() (uint16, error) {
	s, err := r.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("read flex adc: %w", err)
	}
	raw := s.Raw
	if raw < 0 {
		raw = 0
	}
	// 15 bits of single-ended range down to 12
	return uint16(raw >> 3), nil
}

// Close halts the ADC channel and closes the bus.
func (r *RealFlex) Close() error {
	var errs []error
	if r.pin != nil {
		if err := r.pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("halt adc: %w", err))
		}
	}
	if r.bus != nil {
		if err := r.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// LSM6DS-family accelerometer registers.
const (
	regWhoAmI  = 0x0F
	regCtrl1XL = 0x10
	regCtrl3C  = 0x12
	regOutXL   = 0x28 // OUTX_L_XL, followed by OUTX_H, OUTY_L...

	// ODR 104Hz, ±2g (0.061 mg/LSB)
	ctrl1XL104Hz2g = 0x40
	// BDU + IF_INC
	ctrl3CBDUInc = 0x44
	// power-down
	ctrl1XLOff = 0x00
)

// RealMotion reads an LSM6DS-family accelerometer over I2C.
type RealMotion struct {
	bus i2c.BusCloser
	dev *i2c.Dev
}

// NewRealMotion opens the I2C bus for the accelerometer. The device stays
// powered down until Configure.
func NewRealMotion(busName string, addr uint16) (*RealMotion, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("motion: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("motion: open i2c bus %q: %w", busName, err)
	}

	return &RealMotion{
		bus: bus,
		dev: &i2c.Dev{Bus: bus, Addr: addr},
	}, nil
}

// Configure checks the device ID and enables the accelerometer.
func (r *RealMotion) Configure() error {
	id, err := r.readReg(regWhoAmI)
	if err != nil {
		return fmt.Errorf("read WHO_AM_I: %w", err)
	}
	log.Printf("motion: WHO_AM_I = 0x%02X", id)

	if err := r.writeReg(regCtrl3C, ctrl3CBDUInc); err != nil {
		return fmt.Errorf("write CTRL3_C: %w", err)
	}
	if err := r.writeReg(regCtrl1XL, ctrl1XL104Hz2g); err != nil {
		return fmt.Errorf("write CTRL1_XL: %w", err)
	}
	return nil
}

// ReadAxis reads the little-endian output pair for one axis.
func (r *RealMotion) ReadAxis(axis Axis) (int16, error) {
	if axis > AxisZ {
		return 0, fmt.Errorf("invalid axis %s", axis)
	}
	buf := make([]byte, 2)
	if err := r.dev.Tx([]byte{regOutXL + 2*byte(axis)}, buf); err != nil {
		return 0, fmt.Errorf("read %s output: %w", axis, err)
	}
	return int16(uint16(buf[0]) | uint16(buf[1])<<8), nil
}

// Close powers the accelerometer down and closes the bus.
func (r *RealMotion) Close() error {
	var errs []error
	if r.dev != nil {
		if err := r.writeReg(regCtrl1XL, ctrl1XLOff); err != nil {
			errs = append(errs, fmt.Errorf("power down: %w", err))
		}
	}
	if r.bus != nil {
		if err := r.bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func (r *RealMotion) readReg(reg byte) (byte, error) {
	buf := []byte{0}
	if err := r.dev.Tx([]byte{reg}, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (r *RealMotion) writeReg(reg, val byte) error {
	return r.dev.Tx([]byte{reg, val}, nil)
}
