// Command rep-logger reads diagnostic records from the rep counter's serial
// link, writes them to a CSV session file and serves a live dashboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/rep-counter/internal/config"
	"github.com/sweeney/rep-counter/internal/diag"
	"github.com/sweeney/rep-counter/internal/recorder"
	"github.com/sweeney/rep-counter/internal/status"
	"github.com/sweeney/rep-counter/internal/web"
)

func main() {
	configPath := flag.String("config", "rep-counter.yaml", "YAML config file (missing file uses defaults)")
	serialPort := flag.String("serial", "", `Serial port to read ("-" reads stdin; overrides config)`)
	httpAddr := flag.String("http", "", "Dashboard address (overrides config; \"off\" disables)")
	csvPath := flag.String("csv", "", "CSV session file (overrides config; \"off\" disables)")
	listPorts := flag.Bool("list-ports", false, "List serial ports and exit")

	flag.Parse()

	if *listPorts {
		if err := printPorts(os.Stdout); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: load config: %v", err)
	}
	applyFlags(cfg, *serialPort, *httpAddr, *csvPath)

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyFlags overrides config fields with non-empty flag values.
func applyFlags(cfg *config.Config, serialPort, httpAddr, csvPath string) {
	if serialPort != "" {
		cfg.Serial.Port = serialPort
	}
	switch httpAddr {
	case "":
	case "off":
		cfg.Web.Addr = ""
	default:
		cfg.Web.Addr = httpAddr
	}
	switch csvPath {
	case "":
	case "off":
		cfg.Recorder.CSVPath = ""
	default:
		cfg.Recorder.CSVPath = csvPath
	}
}

func printPorts(w io.Writer) error {
	ports, err := diag.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(w, p)
	}
	return nil
}

func openInput(cfg *config.Config) (io.ReadCloser, error) {
	if cfg.Serial.Port == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	port, err := diag.OpenSerial(cfg.Serial.Port, cfg.Serial.Baud)
	if err != nil {
		return nil, fmt.Errorf("open serial: %w", err)
	}
	return port, nil
}

func run(cfg *config.Config) error {
	tracker := status.NewTracker(time.Now(), status.Config{
		Port:       cfg.Serial.Port,
		Baud:       cfg.Serial.Baud,
		HTTPAddr:   cfg.Web.Addr,
		CSVPath:    cfg.Recorder.CSVPath,
		Downsample: cfg.Web.Downsample,
	})
	tracker.SetHistoryLimit(cfg.Web.History)

	var rec *recorder.Recorder
	if cfg.Recorder.CSVPath != "" {
		r, err := recorder.Create(cfg.Recorder.CSVPath)
		if err != nil {
			return fmt.Errorf("init recorder: %w", err)
		}
		defer r.Close()
		rec = r
		log.Printf("recording to %s", cfg.Recorder.CSVPath)
	}

	if cfg.Web.Addr != "" {
		srv := web.New(cfg.Web.Addr, tracker, cfg.Web.Downsample)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("dashboard listening on %s", cfg.Web.Addr)
	}

	in, err := openInput(cfg)
	if err != nil {
		return err
	}
	tracker.SetSerialConnected(true)
	log.Printf("started: port=%s baud=%d", cfg.Serial.Port, cfg.Serial.Baud)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Closing the port is the only way to unblock a pending read.
	go func() {
		<-ctx.Done()
		in.Close()
	}()

	err = ingest(in, tracker, rec, time.Now)
	tracker.SetSerialConnected(false)

	snap := tracker.Snapshot()
	log.Printf("stopped: records=%d skipped=%d reps=%d success=%d fail=%d",
		snap.Records, snap.Skipped, snap.Reps, snap.Successes, snap.Fails)

	if ctx.Err() != nil {
		return nil
	}
	return err
}

// ingest feeds every record from r into the tracker and recorder until EOF.
// Recorder failures are logged once and recording stops; the live view keeps
// running.
func ingest(r io.Reader, tracker *status.Tracker, rec *recorder.Recorder, now func() time.Time) error {
	handle := func(d diag.Record) {
		at := now()
		tracker.Observe(d, at)
		if rec == nil {
			return
		}
		if err := rec.Write(at, d); err != nil {
			log.Printf("recorder: %v (recording stopped)", err)
			rec = nil
		}
	}
	skip := func(line string, err error) {
		tracker.AddSkipped(1)
	}

	if err := diag.ScanFunc(r, handle, skip); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("read records: %w", err)
	}
	return nil
}
