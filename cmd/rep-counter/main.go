// Command rep-counter reads the flex sensor and accelerometer, counts
// repetitions, sounds the buzzer per rep and streams diagnostic records.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sweeney/rep-counter/internal/actuator"
	"github.com/sweeney/rep-counter/internal/config"
	"github.com/sweeney/rep-counter/internal/diag"
	"github.com/sweeney/rep-counter/internal/loop"
	"github.com/sweeney/rep-counter/internal/sensor"
)

func main() {
	configPath := flag.String("config", "/etc/rep-counter.yaml", "YAML config file (missing file uses defaults)")
	serialPort := flag.String("serial", "", "Diagnostic serial port (overrides config)")
	stdout := flag.Bool("stdout", false, "Write diagnostic records to stdout instead of the serial port")
	printConfig := flag.Bool("print-config", false, "Print effective configuration and exit")

	flag.Parse()

	cfg, err := loadConfig(*configPath, *serialPort)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *printConfig {
		if err := writeConfig(os.Stdout, cfg); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}
	if err := run(cfg, *stdout); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(path, serialPort string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if serialPort != "" {
		cfg.Serial.Port = serialPort
	}
	return cfg, nil
}

func writeConfig(w io.Writer, cfg *config.Config) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func run(cfg *config.Config, stdout bool) error {
	flex, err := sensor.NewRealFlex(cfg.Flex.Bus, cfg.Flex.Address, cfg.Flex.Channel)
	if err != nil {
		return fmt.Errorf("init flex sensor: %w", err)
	}
	defer flex.Close()

	motion, err := sensor.NewRealMotion(cfg.Motion.Bus, cfg.Motion.Address)
	if err != nil {
		return fmt.Errorf("init accelerometer: %w", err)
	}
	defer motion.Close()

	act, err := openActuators(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := act.Close(); err != nil {
			log.Printf("actuator close: %v", err)
		}
	}()

	out, err := openDiagOutput(cfg, stdout)
	if err != nil {
		return err
	}
	defer out.Close()

	sink := diag.NewAsyncSink(diag.NewWriterSink(out), diag.DefaultQueueSize)
	defer sink.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := loop.New(flex, motion, act, sink, loop.RealClock{})
	return session(ctx, l)
}

// openActuators returns the buzzer, plus the indicator LED when enabled.
func openActuators(cfg *config.Config) (actuator.Actuator, error) {
	buzzer, err := actuator.NewPWMBuzzer(cfg.Buzzer.Pin)
	if err != nil {
		return nil, fmt.Errorf("init buzzer: %w", err)
	}
	if !cfg.LED.Enabled {
		return buzzer, nil
	}
	led, err := actuator.NewLED(cfg.LED.Chip, cfg.LED.Line)
	if err != nil {
		buzzer.Close()
		return nil, fmt.Errorf("init led: %w", err)
	}
	return actuator.Multi{buzzer, led}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openDiagOutput(cfg *config.Config, stdout bool) (io.WriteCloser, error) {
	if stdout {
		return nopCloser{os.Stdout}, nil
	}
	port, err := diag.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
	if err != nil {
		return nil, fmt.Errorf("open diagnostic serial: %w", err)
	}
	log.Printf("diag: streaming records to %s at %d baud", cfg.Serial.Port, cfg.Serial.Baud)
	return port, nil
}

// session runs the loop until ctx is cancelled or a collaborator fails.
// The actuator is silenced on every exit path.
func session(ctx context.Context, l *loop.Loop) error {
	if err := l.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	log.Printf("started: period=%v", loop.Period)

	err := l.Run(ctx)
	if cerr := l.Close(); cerr != nil {
		log.Printf("silence actuator: %v", cerr)
	}

	st := l.Stats()
	log.Printf("stopped: cycles=%d overruns=%d reps=%d success=%d fail=%d",
		st.Cycles, st.Overruns, st.Reps, st.Successes, st.Fails)
	return err
}
