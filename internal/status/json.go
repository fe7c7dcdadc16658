package status

import (
	"encoding/json"
	"strconv"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Ready         bool        `json:"ready"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     string      `json:"start_time"`
	Timestamp     string      `json:"timestamp"`
	Serial        SerialJSON  `json:"serial"`
	Reps          RepsJSON    `json:"reps"`
	Records       RecordsJSON `json:"records"`
	Latest        *RecordJSON `json:"latest,omitempty"`
	Config        ConfigJSON  `json:"config"`
}

// SerialJSON reports the serial link state.
type SerialJSON struct {
	Connected bool   `json:"connected"`
	Port      string `json:"port"`
	Baud      int    `json:"baud"`
}

// RepsJSON summarizes rep outcomes.
type RepsJSON struct {
	Count         uint32  `json:"count"`
	Success       uint32  `json:"success"`
	Fail          uint32  `json:"fail"`
	FirstRep      string  `json:"first_rep,omitempty"`
	LastRep       string  `json:"last_rep,omitempty"`
	MeanMagnitude float64 `json:"mean_magnitude"`
}

// RecordsJSON counts received lines.
type RecordsJSON struct {
	Received uint64 `json:"received"`
	Skipped  uint64 `json:"skipped"`
}

// RecordJSON is one diagnostic record with its arrival time.
type RecordJSON struct {
	Seq       uint64  `json:"seq"`
	Time      string  `json:"time"`
	Flex      float32 `json:"flex"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Z         float32 `json:"z"`
	Stability float32 `json:"stability"`
	Magnitude float32 `json:"magnitude"`
	Direction string  `json:"direction"`
	RepCount  uint32  `json:"rep_count"`
	BeepHz    uint32  `json:"beep_hz"`
}

// ConfigJSON is the JSON representation of logger config.
type ConfigJSON struct {
	CSVPath    string `json:"csv_path"`
	HTTPAddr   string `json:"http_addr"`
	Downsample int    `json:"downsample"`
}

// LatestJSON is the compact /latest payload.
type LatestJSON struct {
	Time string `json:"time"`
	Flex string `json:"flex"`
	Reps string `json:"reps"`
}

// NewRecordJSON converts a sample for JSON output.
func NewRecordJSON(s Sample) RecordJSON {
	r := s.Record
	return RecordJSON{
		Seq:       s.Seq,
		Time:      s.Time.Format("15:04:05"),
		Flex:      r.Flex,
		X:         r.X,
		Y:         r.Y,
		Z:         r.Z,
		Stability: r.Stability,
		Magnitude: r.Magnitude,
		Direction: r.Direction.String(),
		RepCount:  r.RepCount,
		BeepHz:    r.BeepHz,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Ready:         snap.HasRecord,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Serial: SerialJSON{
			Connected: snap.SerialConnected,
			Port:      snap.Config.Port,
			Baud:      snap.Config.Baud,
		},
		Reps: RepsJSON{
			Count:         snap.Reps,
			Success:       snap.Successes,
			Fail:          snap.Fails,
			FirstRep:      formatTime(snap.FirstRepAt),
			LastRep:       formatTime(snap.LastRepAt),
			MeanMagnitude: snap.MeanMagnitude,
		},
		Records: RecordsJSON{
			Received: snap.Records,
			Skipped:  snap.Skipped,
		},
		Config: ConfigJSON{
			CSVPath:    snap.Config.CSVPath,
			HTTPAddr:   snap.Config.HTTPAddr,
			Downsample: snap.Config.Downsample,
		},
	}
	if snap.HasRecord {
		latest := NewRecordJSON(snap.Latest)
		inner.Latest = &latest
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatLatest returns the /latest payload. ok is false if nothing has been
// received yet.
func FormatLatest(snap Snapshot) (data []byte, ok bool) {
	if !snap.HasRecord {
		return nil, false
	}
	r := snap.Latest.Record
	data, _ = json.Marshal(LatestJSON{
		Time: snap.Latest.Time.Format("15:04:05"),
		Flex: strconv.FormatFloat(float64(r.Flex), 'f', 1, 32),
		Reps: strconv.FormatUint(uint64(r.RepCount), 10),
	})
	return data, true
}

// FormatHistory returns the /data payload.
func FormatHistory(samples []Sample) []byte {
	out := make([]RecordJSON, 0, len(samples))
	for _, s := range samples {
		out = append(out, NewRecordJSON(s))
	}
	data, _ := json.Marshal(out)
	return data
}
