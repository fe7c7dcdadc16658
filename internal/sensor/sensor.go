// Package sensor provides flex and motion acquisition with hardware abstraction.
// The real implementations use periph.io over I2C.
// The fake implementations allow testing without hardware.
package sensor

import "fmt"

// Axis selects one accelerometer axis.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// FlexReader reads the raw flex sensor value.
type FlexReader interface {
	// ReadFlex returns the raw, unscaled ADC reading (12 bit counts).
	ReadFlex() (uint16, error)

	// Close releases the ADC.
	Close() error
}

// MotionReader reads raw accelerometer counts.
type MotionReader interface {
	// Configure powers the device up and selects its mode. Must be called
	// once before the first ReadAxis.
	Configure() error

	// ReadAxis returns the raw signed count for one axis.
	ReadAxis(axis Axis) (int16, error)

	// Close releases the bus.
	Close() error
}

// ReadMotion reads X, Y and Z in that order.
func ReadMotion(r MotionReader) (x, y, z int16, err error) {
	if x, err = r.ReadAxis(AxisX); err != nil {
		return 0, 0, 0, fmt.Errorf("read axis X: %w", err)
	}
	if y, err = r.ReadAxis(AxisY); err != nil {
		return 0, 0, 0, fmt.Errorf("read axis Y: %w", err)
	}
	if z, err = r.ReadAxis(AxisZ); err != nil {
		return 0, 0, 0, fmt.Errorf("read axis Z: %w", err)
	}
	return x, y, z, nil
}

// Default I2C wiring.
const (
	DefaultBus         = "1"
	DefaultADCAddr     = 0x48 // ADS1115, ADDR to GND
	DefaultFlexChannel = 0
	DefaultAccelAddr   = 0x6A // LSM6DS3/LSM6DSO, SA0 to GND
)
