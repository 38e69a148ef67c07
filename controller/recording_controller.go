package controller

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gesture-logger/models"
	"gesture-logger/services/store"
	"gesture-logger/utils"
	"gesture-logger/views"
)

// RecordingController is the final pipeline stage. It takes log requests
// from the frame controller through a bounded queue and writes each record to:
//   - the session text log (always)
//   - a wide CSV with one row per record (optional)
//   - a SQLite store (optional)
//
// Write failures are logged and counted; they never reach the frame loop.
type RecordingController struct {
	storageCfg *utils.StorageConfig
	sessionID  string
	clock      utils.Clock
	features   *models.FeatureMap

	session   *views.SessionLog
	csvWriter *views.CSVWriter
	store     *store.GestureStore

	queue    chan *models.LogRecord
	stopping chan struct{} // closed when the writer begins shutting down

	// sendMu orders Log's enqueue against the final drain: senders hold it
	// for reading, the writer takes it for writing to set closed.
	sendMu sync.RWMutex
	closed bool

	requested   uint64
	written     uint64
	failed      uint64
	sinkFailed  uint64
	discarded   uint64
	wg          sync.WaitGroup
	stopOnce    sync.Once
	startedOnce sync.Once
}

// NewRecordingController creates the session log (truncating any previous
// one) and opens the optional CSV and SQLite sinks.
func NewRecordingController(storageCfg *utils.StorageConfig, features *models.FeatureMap, clock utils.Clock) (*RecordingController, error) {
	if clock == nil {
		clock = utils.RealClock{}
	}
	s := storageCfg.Storage

	session, err := views.CreateSessionLog(s.BaseDir, s.Folder, s.FileName, clock)
	if err != nil {
		return nil, err
	}

	rc := &RecordingController{
		storageCfg: storageCfg,
		sessionID:  uuid.NewString(),
		clock:      clock,
		features:   features,
		session:    session,
		queue:      make(chan *models.LogRecord, s.QueueSize),
		stopping:   make(chan struct{}),
	}

	// ── CSV ──────────────────────────────────────────────────────────
	if s.CSV.Enabled {
		path := filepath.Join(s.BaseDir, s.Folder, s.CSV.FileName)
		rc.csvWriter, err = views.NewCSVWriter(path, s.CSV.BufferSizeKB*1024, s.CSV.WriteHeader,
			models.RecordColumns(features.Keys()))
		if err != nil {
			return nil, err
		}
	}

	// ── SQLite ───────────────────────────────────────────────────────
	if s.SQLite.Enabled {
		path := s.SQLite.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.BaseDir, path)
		}
		rc.store, err = store.NewGestureStore(path)
		if err != nil {
			rc.closeSinks()
			return nil, err
		}
		if err := rc.store.StartSession(rc.sessionID, session.Start(), session.Path()); err != nil {
			rc.closeSinks()
			return nil, err
		}
	}

	utils.L().Info("recording controller ready  session=%s log=%s", rc.sessionID, session.Path())
	return rc, nil
}

// Start launches the writer goroutine and, when CSV export is on, the periodic flusher.
func (rc *RecordingController) Start(ctx context.Context) {
	rc.startedOnce.Do(func() {
		if rc.csvWriter != nil {
			rc.wg.Add(1)
			go rc.flushLoop(ctx)
		}

		rc.wg.Add(1)
		go func() {
			defer rc.wg.Done()
			for {
				select {
				case <-ctx.Done():
					rc.shutdown()
					return
				case rec := <-rc.queue:
					rc.writeRecord(rec)
				}
			}
		}()

		utils.L().Info("recording controller started  (queue=%d)", cap(rc.queue))
	})
}

func (rc *RecordingController) flushLoop(ctx context.Context) {
	defer rc.wg.Done()
	flushMs := rc.storageCfg.Storage.CSV.FlushIntervalMs
	if flushMs <= 0 {
		flushMs = 100
	}
	ticker := time.NewTicker(time.Duration(flushMs) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rc.flushCSV()
		}
	}
}

// shutdown releases blocked senders, stops new ones from enqueueing and
// writes whatever was queued before that point.
func (rc *RecordingController) shutdown() {
	close(rc.stopping)
	rc.sendMu.Lock()
	rc.closed = true
	rc.sendMu.Unlock()
	rc.drain()
}

// drain writes whatever is still queued when the controller is stopping.
func (rc *RecordingController) drain() {
	for {
		select {
		case rec := <-rc.queue:
			rc.writeRecord(rec)
		default:
			return
		}
	}
}

// Log snapshots the feature map for slot and queues the record. It blocks
// while the queue is full and only gives up once the writer is shutting
// down; a record that is not queued by then is counted as discarded.
func (rc *RecordingController) Log(slot, participant int, trackingID uint64) {
	rec := &models.LogRecord{
		SessionID:   rc.sessionID,
		Participant: participant,
		Slot:        slot,
		TrackingID:  trackingID,
		Elapsed:     rc.session.Elapsed(),
		TimestampNs: rc.clock.Now().UnixNano(),
		Features:    rc.features.Snapshot(),
	}
	atomic.AddUint64(&rc.requested, 1)

	rc.sendMu.RLock()
	defer rc.sendMu.RUnlock()
	if rc.closed {
		rc.discard(slot)
		return
	}
	select {
	case rc.queue <- rec:
	case <-rc.stopping:
		rc.discard(slot)
	}
}

func (rc *RecordingController) discard(slot int) {
	atomic.AddUint64(&rc.discarded, 1)
	utils.L().Warn("recording: discarding record for slot %d after shutdown", slot)
}

// Elapsed returns the time since the session started.
func (rc *RecordingController) Elapsed() time.Duration {
	return rc.session.Elapsed()
}

// writeRecord appends one record to every sink.
func (rc *RecordingController) writeRecord(rec *models.LogRecord) {
	if err := rc.session.Append(rec.Text()); err != nil {
		atomic.AddUint64(&rc.failed, 1)
		utils.L().Error("recording: session log append failed (slot=%d): %v", rec.Slot, err)
	} else {
		atomic.AddUint64(&rc.written, 1)
	}

	if rc.csvWriter != nil {
		if err := rc.csvWriter.WriteRecord(rec); err != nil {
			atomic.AddUint64(&rc.sinkFailed, 1)
			utils.L().Error("recording: csv: %v", err)
		}
	}
	if rc.store != nil {
		if err := rc.store.InsertRecord(rec); err != nil {
			atomic.AddUint64(&rc.sinkFailed, 1)
			utils.L().Error("recording: sqlite: %v", err)
		}
	}
}

func (rc *RecordingController) flushCSV() {
	if rc.csvWriter == nil {
		return
	}
	if err := rc.csvWriter.Flush(); err != nil {
		utils.L().Error("recording: %v", err)
	}
}

// Stop waits for the writer goroutines (the context passed to Start must be
// cancelled first), then flushes and closes every sink.
func (rc *RecordingController) Stop() {
	rc.stopOnce.Do(func() {
		rc.wg.Wait()
		if rc.store != nil {
			rc.logSummary()
			if err := rc.store.EndSession(rc.sessionID, rc.clock.Now()); err != nil {
				utils.L().Error("recording: %v", err)
			}
		}
		rc.closeSinks()

		written, failed := rc.Stats()
		utils.L().Info("recording controller stopped  (written=%d, failed=%d, session=%s)",
			written, failed, rc.sessionID)
	})
}

// logSummary reports what the store holds for this session: record and
// participant counts and the mean confidence of every gesture.
func (rc *RecordingController) logSummary() {
	n, err := rc.store.RecordCount(rc.sessionID)
	if err != nil {
		utils.L().Error("recording: summary: %v", err)
		return
	}
	records, err := rc.store.Records(rc.sessionID)
	if err != nil {
		utils.L().Error("recording: summary: %v", err)
		return
	}
	participants := make(map[int]int)
	for i := range records {
		participants[records[i].Participant]++
	}

	utils.L().Info("session summary  (session=%s, started=%s, records=%d, participants=%d)",
		rc.sessionID, utils.FormatTimestamp(rc.session.Start().UnixNano()), n, len(participants))
	for _, name := range rc.features.Keys() {
		mean, err := rc.store.MeanConfidence(rc.sessionID, name)
		if err != nil {
			utils.L().Error("recording: summary: %v", err)
			return
		}
		utils.L().Info("  mean %-20s %.3f", name, mean)
	}
}

func (rc *RecordingController) closeSinks() {
	if rc.csvWriter != nil {
		if err := rc.csvWriter.Close(); err != nil {
			utils.L().Error("recording: %v", err)
		}
	}
	if rc.store != nil {
		if err := rc.store.Close(); err != nil {
			utils.L().Error("recording: close store: %v", err)
		}
	}
}

// SessionID returns the UUID of this recording session.
func (rc *RecordingController) SessionID() string { return rc.sessionID }

// LogPath returns the path of the session text log.
func (rc *RecordingController) LogPath() string { return rc.session.Path() }

// Stats returns (written, failed) text log record counts.
func (rc *RecordingController) Stats() (uint64, uint64) {
	return atomic.LoadUint64(&rc.written), atomic.LoadUint64(&rc.failed)
}

// RequestStats returns (requested, discarded, sinkFailed) counts.
func (rc *RecordingController) RequestStats() (uint64, uint64, uint64) {
	return atomic.LoadUint64(&rc.requested), atomic.LoadUint64(&rc.discarded), atomic.LoadUint64(&rc.sinkFailed)
}

// String summarises the sinks for startup logging.
func (rc *RecordingController) String() string {
	return fmt.Sprintf("session=%s csv=%v sqlite=%v", rc.sessionID, rc.csvWriter != nil, rc.store != nil)
}
