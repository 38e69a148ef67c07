package models

import (
	"strconv"
)

// ─── shared formatting helpers (package-private) ────────────────────────

func itoa(v int) string      { return strconv.Itoa(v) }
func itoa64(v int64) string  { return strconv.FormatInt(v, 10) }
func utoa64(v uint64) string { return strconv.FormatUint(v, 10) }

// ftoa32 formats a float32 with a fixed number of decimals, rounding on the
// float32 value rather than its widened float64 form.
func ftoa32(v float32, prec int) string {
	return strconv.FormatFloat(float64(v), 'f', prec, 32)
}

// CSVRowWriter is the interface every exportable model must satisfy.
type CSVRowWriter interface {
	CSVHeader() []string
	CSVRow() []string
}
