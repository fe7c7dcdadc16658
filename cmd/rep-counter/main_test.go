package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/rep-counter/internal/actuator"
	"github.com/sweeney/rep-counter/internal/config"
	"github.com/sweeney/rep-counter/internal/diag"
	"github.com/sweeney/rep-counter/internal/logic"
	"github.com/sweeney/rep-counter/internal/loop"
	"github.com/sweeney/rep-counter/internal/sensor"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// flexSet is one good rep followed by one shallow rep.
func flexSet() []uint16 {
	var out []uint16
	add := func(v uint16, n int) {
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
	}
	add(0, 5)
	add(200, 30)
	add(0, 30)
	add(100, 40)
	add(0, 30)
	return out
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "none.yaml"), "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Serial.Port != config.Default().Serial.Port {
		t.Errorf("Serial.Port: got %q", cfg.Serial.Port)
	}
}

func TestLoadConfigSerialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("serial:\n  port: /dev/ttyS0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, "")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Serial.Port != "/dev/ttyS0" {
		t.Errorf("file value: got %q", cfg.Serial.Port)
	}

	cfg, err = loadConfig(path, "/dev/ttyUSB1")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Serial.Port != "/dev/ttyUSB1" {
		t.Errorf("flag override: got %q", cfg.Serial.Port)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("serial:\n  baud: -9\n"), 0644)

	if _, err := loadConfig(path, ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteConfig(t *testing.T) {
	var buf bytes.Buffer
	if err := writeConfig(&buf, config.Default()); err != nil {
		t.Fatalf("writeConfig: %v", err)
	}
	for _, want := range []string{"flex:", "buzzer:", "serial:", "baud: 115200"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestOpenDiagOutputStdout(t *testing.T) {
	out, err := openDiagOutput(config.Default(), true)
	if err != nil {
		t.Fatalf("openDiagOutput: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestSessionRunsUntilCancelled(t *testing.T) {
	flex := sensor.NewFakeFlex(flexSet()...)
	motion := sensor.NewFakeMotion(sensor.Triple{Z: 16393})
	act := actuator.NewFake()
	var out bytes.Buffer
	sink := diag.NewWriterSink(&out)
	clock := loop.NewFakeClock(t0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cycles := 0
	clock.OnSleep = func(d time.Duration) {
		if d == loop.Period {
			cycles++
		}
		if cycles >= 200 {
			cancel()
		}
	}

	l := loop.New(flex, motion, act, sink, clock, loop.WithHeartbeat(0))
	if err := session(ctx, l); err != nil {
		t.Fatalf("session: %v", err)
	}

	st := l.Stats()
	if st.Reps != 2 || st.Successes != 1 || st.Fails != 1 {
		t.Errorf("stats: got %+v, want 2 reps (1 success, 1 fail)", st)
	}
	if act.Sounding() {
		t.Error("actuator left sounding after session")
	}
	if !motion.Configured {
		t.Error("motion sensor not configured")
	}

	// Every record line parses back.
	var tones []uint32
	skipped, err := diag.Scan(&out, func(r diag.Record) {
		if r.BeepHz != 0 {
			tones = append(tones, r.BeepHz)
		}
	})
	if err != nil || skipped != 0 {
		t.Fatalf("Scan: skipped=%d err=%v", skipped, err)
	}
	if len(tones) != 2 || tones[0] != logic.SuccessToneHz || tones[1] != logic.FailToneHz {
		t.Errorf("tones: got %v", tones)
	}
}

func TestSessionPropagatesFault(t *testing.T) {
	flex := sensor.NewFakeFlex(0)
	flex.ReadError = errors.New("i2c nack")
	act := actuator.NewFake()

	l := loop.New(flex, sensor.NewFakeMotion(), act, diag.NewFakeSink(), loop.NewFakeClock(t0))
	err := session(context.Background(), l)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "i2c nack") {
		t.Errorf("error: got %v", err)
	}
	if act.Duty != 0 {
		t.Errorf("duty after fault: got %d, want 0", act.Duty)
	}
}

func TestSessionStartFailure(t *testing.T) {
	motion := sensor.NewFakeMotion()
	motion.ConfigureError = errors.New("no device")

	l := loop.New(sensor.NewFakeFlex(0), motion, actuator.NewFake(), diag.NewFakeSink(), loop.NewFakeClock(t0))
	err := session(context.Background(), l)
	if err == nil || !strings.Contains(err.Error(), "start") {
		t.Fatalf("expected start error, got %v", err)
	}
}
