// Command rep-monitor shows a live terminal chart of the rep counter's
// diagnostic stream: flex value, movement magnitude and rep outcomes.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sweeney/rep-counter/internal/config"
	"github.com/sweeney/rep-counter/internal/diag"
)

func main() {
	configPath := flag.String("config", "rep-counter.yaml", "YAML config file (missing file uses defaults)")
	serialPort := flag.String("serial", "", `Serial port to read ("-" reads stdin; overrides config)`)

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: load config: %v", err)
	}
	if *serialPort != "" {
		cfg.Serial.Port = *serialPort
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg *config.Config) error {
	var in io.ReadCloser = io.NopCloser(os.Stdin)
	if cfg.Serial.Port != "-" {
		port, err := diag.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return fmt.Errorf("open serial: %w", err)
		}
		in = port
	}
	defer in.Close()

	f := startFeed(in)
	p := tea.NewProgram(newMonitorModel(f, cfg.Serial.Port), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// feed carries parsed records from the reader goroutine to the TUI.
type feed struct {
	records chan diag.Record
	err     chan error
	skipped atomic.Int64
}

func startFeed(r io.Reader) *feed {
	f := &feed{
		records: make(chan diag.Record, 256),
		err:     make(chan error, 1),
	}
	go func() {
		err := diag.ScanFunc(r, func(rec diag.Record) {
			f.records <- rec
		}, func(string, error) {
			f.skipped.Add(1)
		})
		close(f.records)
		f.err <- err
	}()
	return f
}
