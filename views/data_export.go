package views

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"gesture-logger/models"
)

// CSVWriter is a concurrency-safe, buffered CSV writer for gesture records.
//
//   - Underlying bufio.Writer absorbs write syscall overhead.
//   - Mutex is held only for the duration of a single row encode.
//   - Periodic Flush() is called by the recording controller, not by
//     the writer itself, so the hot path never blocks on I/O.
type CSVWriter struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	csv  *csv.Writer
	header  []string
	checked bool // first record's header matched
	rows    uint64
}

// NewCSVWriter creates (truncating) a file and writes the header row.
func NewCSVWriter(path string, bufSizeBytes int, writeHeader bool, header []string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv create %s: %w", path, err)
	}

	if bufSizeBytes <= 0 {
		bufSizeBytes = 256 * 1024 // 256 KB default
	}

	bw := bufio.NewWriterSize(f, bufSizeBytes)
	cw := csv.NewWriter(bw)

	w := &CSVWriter{
		file: f,
		buf:  bw,
		csv:  cw,
		header: header,
	}

	if writeHeader && len(header) > 0 {
		if err := cw.Write(header); err != nil {
			f.Close()
			return nil, fmt.Errorf("csv write header: %w", err)
		}
	}

	return w, nil
}

// WriteRecord appends one record as a row. The first record's own header
// must match the file header; every row must have as many columns.
func (w *CSVWriter) WriteRecord(r models.CSVRowWriter) error {
	row := r.CSVRow()
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.header) > 0 {
		if !w.checked {
			if err := ValidateHeader(r.CSVHeader(), w.header); err != nil {
				return fmt.Errorf("csv record schema: %w", err)
			}
			w.checked = true
		}
		if len(row) != len(w.header) {
			return fmt.Errorf("csv row has %d columns, header has %d", len(row), len(w.header))
		}
	}
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("csv write row: %w", err)
	}
	w.rows++
	return nil
}

// Flush pushes the buffered data to the OS and reports any deferred write error.
func (w *CSVWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("csv flush: %w", err)
	}
	return nil
}

// Close flushes remaining data and closes the file.
func (w *CSVWriter) Close() error {
	flushErr := w.Flush()
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("csv close: %w", err)
	}
	return flushErr
}

// Rows returns the number of data rows written (excludes header).
func (w *CSVWriter) Rows() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rows
}
