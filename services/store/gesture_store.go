package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
	_ "modernc.org/sqlite"

	"gesture-logger/models"
	"gesture-logger/utils"
)

// GestureStore persists gesture log records in SQLite: one row per record
// and one row per gesture confidence.
type GestureStore struct {
	*sql.DB
}

// schema.sql creates the sessions, gesture_records and gesture_confidences tables.
//
//go:embed schema.sql
var schemaSQL string

// NewGestureStore opens (creating if needed) the database at path and applies the schema.
func NewGestureStore(path string) (*GestureStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open gesture store: %w", err)
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply gesture store schema: %w", err)
	}

	utils.L().Info("gesture store ready  (path=%s)", path)
	return &GestureStore{db}, nil
}

// StartSession creates the session row records are attached to.
func (s *GestureStore) StartSession(id string, startedAt time.Time, notes string) error {
	_, err := s.Exec(`INSERT INTO sessions (id, started_at_ns, notes) VALUES (?, ?, ?)`,
		id, startedAt.UnixNano(), notes)
	if err != nil {
		return fmt.Errorf("start session %s: %w", id, err)
	}
	return nil
}

// EndSession stamps the session's end time.
func (s *GestureStore) EndSession(id string, endedAt time.Time) error {
	_, err := s.Exec(`UPDATE sessions SET ended_at_ns = ? WHERE id = ?`, endedAt.UnixNano(), id)
	if err != nil {
		return fmt.Errorf("end session %s: %w", id, err)
	}
	return nil
}

// InsertRecord writes rec and its confidences in one transaction.
func (s *GestureStore) InsertRecord(rec *models.LogRecord) (err error) {
	tx, err := s.Begin()
	if err != nil {
		return fmt.Errorf("begin insert record: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.Exec(`
		INSERT INTO gesture_records (session_id, participant, slot, tracking_id, elapsed_ns, timestamp_ns)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.SessionID, rec.Participant, rec.Slot, int64(rec.TrackingID), int64(rec.Elapsed), rec.TimestampNs)
	if err != nil {
		return fmt.Errorf("insert gesture record: %w", err)
	}
	recordID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get record ID: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO gesture_confidences (record_id, position, gesture, confidence) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare confidence insert: %w", err)
	}
	defer stmt.Close()
	for i, f := range rec.Features {
		if _, err = stmt.Exec(recordID, i, f.Name, float64(f.Confidence)); err != nil {
			return fmt.Errorf("insert confidence %s: %w", f.Name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// Records returns every record of a session in insertion order.
func (s *GestureStore) Records(sessionID string) ([]models.LogRecord, error) {
	rows, err := s.Query(`
		SELECT r.id, r.participant, r.slot, r.tracking_id, r.elapsed_ns, r.timestamp_ns,
		       c.gesture, c.confidence
		FROM gesture_records r
		JOIN gesture_confidences c ON c.record_id = r.id
		WHERE r.session_id = ?
		ORDER BY r.id, c.position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var (
		out    []models.LogRecord
		lastID int64 = -1
	)
	for rows.Next() {
		var (
			id, trackingID, elapsed, ts int64
			participant, slot           int
			name                        string
			conf                        float64
		)
		if err := rows.Scan(&id, &participant, &slot, &trackingID, &elapsed, &ts, &name, &conf); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if id != lastID {
			out = append(out, models.LogRecord{
				SessionID:   sessionID,
				Participant: participant,
				Slot:        slot,
				TrackingID:  uint64(trackingID),
				Elapsed:     time.Duration(elapsed),
				TimestampNs: ts,
			})
			lastID = id
		}
		r := &out[len(out)-1]
		r.Features = append(r.Features, models.FeatureConfidence{Name: name, Confidence: float32(conf)})
	}
	return out, rows.Err()
}

// MeanConfidence averages one gesture's confidence over a session. It
// returns 0 when the session has no records.
func (s *GestureStore) MeanConfidence(sessionID, gesture string) (float64, error) {
	rows, err := s.Query(`
		SELECT c.confidence
		FROM gesture_confidences c
		JOIN gesture_records r ON r.id = c.record_id
		WHERE r.session_id = ? AND c.gesture = ?
	`, sessionID, gesture)
	if err != nil {
		return 0, fmt.Errorf("query confidences: %w", err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return 0, fmt.Errorf("scan confidence: %w", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	return stat.Mean(values, nil), nil
}

// RecordCount returns the number of records stored for a session.
func (s *GestureStore) RecordCount(sessionID string) (int, error) {
	var n int
	err := s.QueryRow(`SELECT COUNT(*) FROM gesture_records WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
