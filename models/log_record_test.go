package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecord_Text(t *testing.T) {
	t.Parallel()
	m, err := NewFeatureMap(nil)
	require.NoError(t, err)
	m.Set("HeadBackward", 0.5)
	m.Set("HandOnNeck_Right", 1)

	rec := LogRecord{Participant: 2, Elapsed: 61*time.Second + 5*time.Millisecond, Features: m.Snapshot()}
	lines := strings.Split(rec.Text(), "\n")

	require.Len(t, lines, 1+GestureCount+1) // trailing newline
	assert.Equal(t, "2-00:01:01.0050000", lines[0])
	assert.Equal(t, "HeadBackward 0.500", lines[1])
	assert.Equal(t, "HeadBentForward 0.000", lines[2])
	assert.Equal(t, "HandOnNeck_Right 1.000", lines[GestureCount])
	assert.Empty(t, lines[GestureCount+1])
}

func TestLogRecord_CSV(t *testing.T) {
	t.Parallel()
	rec := LogRecord{
		Participant: 1, Slot: 3, TrackingID: 72057594037927936, TimestampNs: 42,
		Features: []FeatureConfidence{{Name: "A", Confidence: 0.25}},
	}
	assert.Equal(t, []string{"timestamp_ns", "participant", "slot", "tracking_id", "elapsed", "A"}, rec.CSVHeader())
	assert.Equal(t, []string{"42", "1", "3", "72057594037927936", "00:00:00.0000000", "0.250"}, rec.CSVRow())
	assert.Len(t, LogRecord{}.CSVHeader(), 5+GestureCount)
	assert.Equal(t, RecordColumns(nil), LogRecord{}.CSVHeader())
	assert.Len(t, rec.CSVRow(), len(rec.CSVHeader()))
}
