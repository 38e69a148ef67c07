package views

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gesture-logger/utils"
)

// SessionLog is the append-only text log of one recording session. The file
// is truncated when the session is created; each Append opens, writes,
// flushes and closes it while holding the session's lock, so concurrent
// records never interleave.
type SessionLog struct {
	mu    sync.Mutex
	path  string
	clock utils.Clock
	start time.Time

	appends  uint64
	failures uint64
}

// CreateSessionLog creates <baseDir>/<folder>/<fileName>, replacing any
// existing file, and starts the session clock.
func CreateSessionLog(baseDir, folder, fileName string, clock utils.Clock) (*SessionLog, error) {
	if clock == nil {
		clock = utils.RealClock{}
	}
	dir := filepath.Join(baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log folder %s: %w", dir, err)
	}
	path := filepath.Join(dir, fileName)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create session log %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("create session log %s: %w", path, err)
	}

	return &SessionLog{path: path, clock: clock, start: clock.Now()}, nil
}

// Path returns the log file path.
func (l *SessionLog) Path() string { return l.path }

// Start returns the session start time.
func (l *SessionLog) Start() time.Time { return l.start }

// Elapsed returns the time since the session started.
func (l *SessionLog) Elapsed() time.Duration { return l.clock.Since(l.start) }

// Append writes text at the end of the log. Only one append runs at a time;
// other callers wait for it.
func (l *SessionLog) Append(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.append(text); err != nil {
		atomic.AddUint64(&l.failures, 1)
		return err
	}
	atomic.AddUint64(&l.appends, 1)
	return nil
}

func (l *SessionLog) append(text string) (err error) {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close session log: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(text); err != nil {
		return fmt.Errorf("write session log: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush session log: %w", err)
	}
	return nil
}

// Stats returns (appends, failures) counts atomically.
func (l *SessionLog) Stats() (uint64, uint64) {
	return atomic.LoadUint64(&l.appends), atomic.LoadUint64(&l.failures)
}
