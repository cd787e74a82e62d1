package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID          = "run_id"
	KeyFile           = "file"
	KeyOutput         = "output"
	KeyPath           = "path"
	KeyStage          = "stage"
	KeyWorker         = "worker"
	KeyDurationMS     = "duration_ms"
	KeyBytes          = "bytes"
	KeyUnresolvedRefs = "unresolved_refs"
	KeyAbbreviations  = "abbreviations"
	KeyLabel          = "label"
	KeyCount          = "count"
	KeyEvent          = "event"
	KeyError          = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func File(path string) slog.Attr       { return slog.String(KeyFile, path) }
func Output(path string) slog.Attr     { return slog.String(KeyOutput, path) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Worker(id int) slog.Attr          { return slog.Int(KeyWorker, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Bytes(n int) slog.Attr            { return slog.Int(KeyBytes, n) }
func UnresolvedRefs(n int) slog.Attr   { return slog.Int(KeyUnresolvedRefs, n) }
func Abbreviations(n int) slog.Attr    { return slog.Int(KeyAbbreviations, n) }
func Label(l string) slog.Attr         { return slog.String(KeyLabel, l) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Event(op string) slog.Attr        { return slog.String(KeyEvent, op) }

// Since is DurationMS measured from start.
func Since(start time.Time) slog.Attr {
	return DurationMS(float64(time.Since(start).Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
