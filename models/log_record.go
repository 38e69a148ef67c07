package models

import (
	"strings"
	"time"

	"gesture-logger/utils"
)

// LogRecord is one timestamped snapshot of every gesture confidence,
// attributed to a participant.
type LogRecord struct {
	SessionID   string              `json:"session_id"`
	Participant int                 `json:"participant"` // registration order position + 1
	Slot        int                 `json:"slot"`
	TrackingID  uint64              `json:"tracking_id"`
	Elapsed     time.Duration       `json:"elapsed"`
	TimestampNs int64               `json:"timestamp_ns"`
	Features    []FeatureConfidence `json:"features"`
}

// Label returns the record header line without the newline, e.g. "1-00:00:03.2500000".
func (r *LogRecord) Label() string {
	return itoa(r.Participant) + "-" + utils.FormatElapsed(r.Elapsed)
}

// Text renders the append-only log form: the label line followed by one
// "name confidence" line per gesture.
func (r *LogRecord) Text() string {
	var b strings.Builder
	b.Grow(32 + len(r.Features)*24)
	b.WriteString(r.Label())
	b.WriteByte('\n')
	for _, f := range r.Features {
		b.WriteString(f.Name)
		b.WriteByte(' ')
		b.WriteString(ftoa32(f.Confidence, 3))
		b.WriteByte('\n')
	}
	return b.String()
}

// RecordIdentityColumns lead every gesture record row, before one column per gesture.
var RecordIdentityColumns = []string{
	"timestamp_ns", "participant", "slot", "tracking_id", "elapsed",
}

// RecordColumns returns the full CSV header for a session logging labels,
// or KnownGestures when labels is empty.
func RecordColumns(labels []string) []string {
	if len(labels) == 0 {
		labels = KnownGestures[:]
	}
	cols := make([]string, 0, len(RecordIdentityColumns)+len(labels))
	cols = append(cols, RecordIdentityColumns...)
	return append(cols, labels...)
}

// CSVHeader returns the header matching CSVRow for this record's features.
func (r LogRecord) CSVHeader() []string {
	labels := make([]string, len(r.Features))
	for i, f := range r.Features {
		labels[i] = f.Name
	}
	return RecordColumns(labels)
}

// CSVRow serialises the record into a CSV-compatible string slice.
func (r *LogRecord) CSVRow() []string {
	row := []string{
		itoa64(r.TimestampNs),
		itoa(r.Participant),
		itoa(r.Slot),
		utoa64(r.TrackingID),
		utils.FormatElapsed(r.Elapsed),
	}
	for _, f := range r.Features {
		row = append(row, ftoa32(f.Confidence, 3))
	}
	return row
}
