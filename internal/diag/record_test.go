package diag

import (
	"strings"
	"testing"

	"github.com/sweeney/rep-counter/internal/logic"
)

func TestRecordLineFormat(t *testing.T) {
	r := Record{
		Flex:      109.5,
		X:         -0.006,
		Y:         -0.003,
		Z:         0.497,
		Stability: 0.247,
		Magnitude: 0.0123,
		Direction: logic.DirStill,
		RepCount:  3,
		BeepHz:    0,
	}

	got := string(r.AppendLine(nil))
	want := "109.5,-0.006,-0.003,0.497,0.2470,0.0123,STILL,3,0\r\n"
	if got != want {
		t.Errorf("line:\n got %q\nwant %q", got, want)
	}
	if r.String() != strings.TrimSuffix(want, "\r\n") {
		t.Errorf("String: got %q", r.String())
	}
}

func TestRecordFieldOrderMatchesHeader(t *testing.T) {
	r := Record{Direction: logic.DirUp, RepCount: 7, BeepHz: logic.SuccessToneHz}
	fields := r.Fields()

	if len(fields) != FieldCount || len(Header) != FieldCount {
		t.Fatalf("expected %d fields and header names, got %d and %d", FieldCount, len(fields), len(Header))
	}
	if fields[6] != "UP" {
		t.Errorf("Direction field: got %q, want UP", fields[6])
	}
	if fields[7] != "7" {
		t.Errorf("Rep_Count field: got %q, want 7", fields[7])
	}
	if fields[8] != "2000" {
		t.Errorf("Beep_Freq field: got %q, want 2000", fields[8])
	}
}

func TestNewRecord(t *testing.T) {
	fs := logic.FilterState{Flex: 60, X: 1, Y: 2, Z: 3}
	cls := logic.MotionClassification{Direction: logic.DirLeft, Magnitude: 0.5}

	r := NewRecord(fs, cls, 4, logic.FailToneHz)

	if r.Flex != 60 || r.X != 1 || r.Y != 2 || r.Z != 3 {
		t.Errorf("smoothed values not copied: %+v", r)
	}
	if r.Stability != 14 {
		t.Errorf("Stability: got %v, want 14", r.Stability)
	}
	if r.Magnitude != 0.5 || r.Direction != logic.DirLeft {
		t.Errorf("classification not copied: %+v", r)
	}
	if r.RepCount != 4 || r.BeepHz != logic.FailToneHz {
		t.Errorf("counters not copied: %+v", r)
	}
}

func TestParseRecord(t *testing.T) {
	r, err := ParseRecord("140.2,0.051,-0.010,0.480,0.2333,0.0520,RIGHT,12,2000\r\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Flex != float32(140.2) {
		t.Errorf("Flex: got %v", r.Flex)
	}
	if r.X != float32(0.051) || r.Y != float32(-0.010) || r.Z != float32(0.480) {
		t.Errorf("axes: got %v %v %v", r.X, r.Y, r.Z)
	}
	if r.Direction != logic.DirRight {
		t.Errorf("Direction: got %s", r.Direction)
	}
	if r.RepCount != 12 || r.BeepHz != 2000 {
		t.Errorf("counters: got %d %d", r.RepCount, r.BeepHz)
	}
}

func TestParseRecordRoundTripsFormattedLine(t *testing.T) {
	line := "55.0,0.100,0.200,0.300,0.1400,0.0000,STILL,0,0"
	r, err := ParseRecord(line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.String() != line {
		t.Errorf("got %q, want %q", r.String(), line)
	}
}

func TestParseRecordRejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"partial line", "140.2,0.051,-0.010"},
		{"too many fields", "1,2,3,4,5,6,STILL,1,0,9"},
		{"bad float", "abc,0,0,0,0,0,STILL,0,0"},
		{"bad direction", "1,0,0,0,0,0,SIDEWAYS,0,0"},
		{"negative count", "1,0,0,0,0,0,STILL,-1,0"},
		{"bad beep", "1,0,0,0,0,0,STILL,1,loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRecord(tt.line); err == nil {
				t.Errorf("expected error for %q", tt.line)
			}
		})
	}
}
