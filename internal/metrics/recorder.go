package metrics

import "time"

// ResultLabel enumerates per-document conversion outcomes.
type ResultLabel string

const (
	ResultConverted ResultLabel = "converted"
	ResultSkipped   ResultLabel = "skipped"
	ResultFailed    ResultLabel = "failed"
)

// Recorder defines observability hooks for document conversion.
type Recorder interface {
	ObserveConversionDuration(d time.Duration)
	IncConversionResult(result ResultLabel)
	AddUnresolvedReferences(n int)
	AddAbbreviations(n int)
	ObserveOutputBytes(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveConversionDuration(time.Duration) {}
func (NoopRecorder) IncConversionResult(ResultLabel)         {}
func (NoopRecorder) AddUnresolvedReferences(int)             {}
func (NoopRecorder) AddAbbreviations(int)                    {}
func (NoopRecorder) ObserveOutputBytes(int)                  {}
