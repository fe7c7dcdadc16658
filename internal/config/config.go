// Package config loads hardware wiring and host settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/rep-counter/internal/actuator"
	"github.com/sweeney/rep-counter/internal/diag"
	"github.com/sweeney/rep-counter/internal/sensor"
)

// Config represents the application configuration.
type Config struct {
	Flex     FlexConfig     `yaml:"flex"`
	Motion   MotionConfig   `yaml:"motion"`
	Buzzer   BuzzerConfig   `yaml:"buzzer"`
	LED      LEDConfig      `yaml:"led"`
	Serial   SerialConfig   `yaml:"serial"`
	Recorder RecorderConfig `yaml:"recorder"`
	Web      WebConfig      `yaml:"web"`
}

// FlexConfig wires the flex sensor ADC.
type FlexConfig struct {
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
	Channel int    `yaml:"channel"`
}

// MotionConfig wires the accelerometer.
type MotionConfig struct {
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// BuzzerConfig names the PWM pin driving the buzzer.
type BuzzerConfig struct {
	Pin string `yaml:"pin"`
}

// LEDConfig is the optional indicator lit while the buzzer sounds.
type LEDConfig struct {
	Enabled bool   `yaml:"enabled"`
	Chip    string `yaml:"chip"`
	Line    int    `yaml:"line"`
}

// SerialConfig is the diagnostic record link.
type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// RecorderConfig controls the host-side CSV session log.
type RecorderConfig struct {
	CSVPath string `yaml:"csv_path"` // empty disables recording
}

// WebConfig controls the host-side dashboard.
type WebConfig struct {
	Addr       string `yaml:"addr"`
	Downsample int    `yaml:"downsample"`
	History    int    `yaml:"history"`
}

// Default returns a default configuration matching the reference board wiring.
func Default() *Config {
	return &Config{
		Flex: FlexConfig{
			Bus:     sensor.DefaultBus,
			Address: sensor.DefaultADCAddr,
			Channel: sensor.DefaultFlexChannel,
		},
		Motion: MotionConfig{
			Bus:     sensor.DefaultBus,
			Address: sensor.DefaultAccelAddr,
		},
		Buzzer: BuzzerConfig{
			Pin: actuator.DefaultBuzzerPin,
		},
		LED: LEDConfig{
			Enabled: false,
			Chip:    "gpiochip0",
			Line:    27,
		},
		Serial: SerialConfig{
			Port: "/dev/ttyACM0",
			Baud: diag.DefaultBaudRate,
		},
		Recorder: RecorderConfig{
			CSVPath: "rep_data.csv",
		},
		Web: WebConfig{
			Addr:       ":8000",
			Downsample: 380,
			History:    50000,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ensureDefaults back-fills fields left at their zero value.
// Channel 0, LED line 0 and an empty CSV path are legitimate and kept.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Flex.Bus == "" {
		c.Flex.Bus = def.Flex.Bus
	}
	if c.Flex.Address == 0 {
		c.Flex.Address = def.Flex.Address
	}
	if c.Motion.Bus == "" {
		c.Motion.Bus = def.Motion.Bus
	}
	if c.Motion.Address == 0 {
		c.Motion.Address = def.Motion.Address
	}
	if c.Buzzer.Pin == "" {
		c.Buzzer.Pin = def.Buzzer.Pin
	}
	if c.LED.Chip == "" {
		c.LED.Chip = def.LED.Chip
	}
	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = def.Serial.Baud
	}
	if c.Web.Addr == "" {
		c.Web.Addr = def.Web.Addr
	}
	if c.Web.Downsample == 0 {
		c.Web.Downsample = def.Web.Downsample
	}
	if c.Web.History == 0 {
		c.Web.History = def.Web.History
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Flex.Bus == "":
		return errors.New("flex.bus is empty")
	case c.Flex.Channel < 0 || c.Flex.Channel > 3:
		return fmt.Errorf("flex.channel %d out of range 0-3", c.Flex.Channel)
	case c.Motion.Bus == "":
		return errors.New("motion.bus is empty")
	case c.Buzzer.Pin == "":
		return errors.New("buzzer.pin is empty")
	case c.LED.Enabled && c.LED.Line < 0:
		return fmt.Errorf("led.line %d is negative", c.LED.Line)
	case c.Serial.Baud <= 0:
		return fmt.Errorf("serial.baud %d must be positive", c.Serial.Baud)
	case c.Web.Downsample < 1:
		return fmt.Errorf("web.downsample %d must be positive", c.Web.Downsample)
	case c.Web.History < 1:
		return fmt.Errorf("web.history %d must be positive", c.Web.History)
	}
	return nil
}
