// Package diag carries the per-cycle diagnostic record: its line format,
// parsing on the receiving side, and the sinks the loop emits into.
package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sweeney/rep-counter/internal/logic"
)

// FieldCount is the number of comma-separated fields in a record line.
const FieldCount = 9

// Header names the record fields in line order.
var Header = []string{
	"Flex_Value",
	"Accel_X",
	"Accel_Y",
	"Accel_Z",
	"Stability",
	"Magnitude",
	"Direction",
	"Rep_Count",
	"Beep_Freq",
}

// Record is one cycle's diagnostic output.
type Record struct {
	Flex      float32
	X         float32
	Y         float32
	Z         float32
	Stability float32
	Magnitude float32
	Direction logic.Direction
	RepCount  uint32
	BeepHz    uint32 // tone issued this cycle, 0 if none
}

// NewRecord assembles a record from one cycle's pipeline outputs.
func NewRecord(fs logic.FilterState, cls logic.MotionClassification, repCount, beepHz uint32) Record {
	return Record{
		Flex:      fs.Flex,
		X:         fs.X,
		Y:         fs.Y,
		Z:         fs.Z,
		Stability: logic.Stability(fs.Motion()),
		Magnitude: cls.Magnitude,
		Direction: cls.Direction,
		RepCount:  repCount,
		BeepHz:    beepHz,
	}
}

// AppendLine appends the record as a CRLF-terminated line.
func (r Record) AppendLine(b []byte) []byte {
	b = strconv.AppendFloat(b, float64(r.Flex), 'f', 1, 32)
	b = append(b, ',')
	b = strconv.AppendFloat(b, float64(r.X), 'f', 3, 32)
	b = append(b, ',')
	b = strconv.AppendFloat(b, float64(r.Y), 'f', 3, 32)
	b = append(b, ',')
	b = strconv.AppendFloat(b, float64(r.Z), 'f', 3, 32)
	b = append(b, ',')
	b = strconv.AppendFloat(b, float64(r.Stability), 'f', 4, 32)
	b = append(b, ',')
	b = strconv.AppendFloat(b, float64(r.Magnitude), 'f', 4, 32)
	b = append(b, ',')
	b = append(b, r.Direction.String()...)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(r.RepCount), 10)
	b = append(b, ',')
	b = strconv.AppendUint(b, uint64(r.BeepHz), 10)
	return append(b, '\r', '\n')
}

// Fields returns the formatted fields without the line terminator.
func (r Record) Fields() []string {
	line := string(r.AppendLine(nil))
	return strings.Split(strings.TrimRight(line, "\r\n"), ",")
}

// String returns the record line without the terminator.
func (r Record) String() string {
	return strings.Join(r.Fields(), ",")
}

// ParseRecord parses one record line. Lines with the wrong number of fields
// are rejected; the board can emit partial lines while the buzzer sounds.
func ParseRecord(line string) (Record, error) {
	line = strings.TrimSpace(line)
	parts := strings.Split(line, ",")
	if len(parts) != FieldCount {
		return Record{}, fmt.Errorf("record: expected %d fields, got %d", FieldCount, len(parts))
	}

	var r Record
	floats := []*float32{&r.Flex, &r.X, &r.Y, &r.Z, &r.Stability, &r.Magnitude}
	for i, dst := range floats {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 32)
		if err != nil {
			return Record{}, fmt.Errorf("record: field %s: %w", Header[i], err)
		}
		*dst = float32(v)
	}

	dir, ok := logic.ParseDirection(strings.TrimSpace(parts[6]))
	if !ok {
		return Record{}, fmt.Errorf("record: unknown direction %q", parts[6])
	}
	r.Direction = dir

	count, err := strconv.ParseUint(strings.TrimSpace(parts[7]), 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("record: field %s: %w", Header[7], err)
	}
	r.RepCount = uint32(count)

	beep, err := strconv.ParseUint(strings.TrimSpace(parts[8]), 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("record: field %s: %w", Header[8], err)
	}
	r.BeepHz = uint32(beep)

	return r, nil
}
