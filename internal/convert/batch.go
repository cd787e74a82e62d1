package convert

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/mdead/internal/ead"
	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/logfields"
	"git.home.luguber.info/inful/mdead/internal/metrics"
)

// FileResult is the outcome for one source.
type FileResult struct {
	Source   string
	Output   string
	Result   metrics.ResultLabel
	Stats    ead.Stats
	Bytes    int
	Duration time.Duration
	Err      error
}

// Summary aggregates a batch run.
type Summary struct {
	RunID     string
	Files     []FileResult
	Converted int
	Skipped   int
	Failed    int
	Bytes     int64
	Duration  time.Duration
}

func (s *Summary) String() string {
	return fmt.Sprintf("%d converted, %d skipped, %d failed (%s written in %s)",
		s.Converted, s.Skipped, s.Failed,
		humanize.Bytes(uint64(s.Bytes)), s.Duration.Round(time.Millisecond))
}

// ConvertPaths collects Markdown files under paths and converts them.
func (c *Converter) ConvertPaths(ctx context.Context, paths []string) (*Summary, error) {
	sources, err := Collect(paths)
	if err != nil {
		return nil, err
	}
	return c.ConvertSources(ctx, sources)
}

// ConvertSources converts sources on a bounded worker pool. A failing
// document does not stop the others; the returned error reports the
// failures after every document was attempted.
func (c *Converter) ConvertSources(ctx context.Context, sources []Source) (*Summary, error) {
	start := c.now()
	runID := uuid.NewString()
	logger := c.logger.With(logfields.RunID(runID))

	var state *State
	if c.cfg.Incremental.Enabled {
		st, err := LoadState(c.cfg.Incremental.StateFile, SettingsFingerprint(c.cfg))
		if err != nil {
			return nil, err
		}
		state = st
	}

	workers := c.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(sources) {
		workers = len(sources)
	}

	logger.Info("Starting conversion", logfields.Count(len(sources)), slog.Int("workers", workers))

	results := make([]FileResult, len(sources))
	dispatched := make([]bool, len(sources))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			wlog := logger.With(logfields.Worker(id))
			for i := range jobs {
				results[i] = c.convertSource(sources[i], state, wlog)
			}
		}(w)
	}

feed:
	for i := range sources {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
			dispatched[i] = true
		}
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{RunID: runID}
	var failures []error
	for i, r := range results {
		if !dispatched[i] {
			continue
		}
		summary.Files = append(summary.Files, r)
		switch r.Result {
		case metrics.ResultConverted:
			summary.Converted++
			summary.Bytes += int64(r.Bytes)
		case metrics.ResultSkipped:
			summary.Skipped++
		case metrics.ResultFailed:
			summary.Failed++
			failures = append(failures, r.Err)
		}
	}
	summary.Duration = c.now().Sub(start)

	if state != nil {
		if err := state.Save(); err != nil {
			logger.Warn("Failed to save incremental state", logfields.Error(err))
		}
	}

	logger.Info("Conversion finished",
		slog.Int("converted", summary.Converted),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		logfields.DurationMS(float64(summary.Duration.Microseconds())/1000))

	if err := ctx.Err(); err != nil {
		return summary, errors.WrapError(err, errors.CategoryRuntime, "conversion canceled").Build()
	}
	switch len(failures) {
	case 0:
		return summary, nil
	case 1:
		return summary, failures[0]
	default:
		return summary, errors.RuntimeError(fmt.Sprintf("%d of %d documents failed", len(failures), len(summary.Files))).
			WithCause(stderrors.Join(failures...)).Build()
	}
}

// ConvertFile converts a single source and writes its output.
func (c *Converter) ConvertFile(src Source) FileResult {
	return c.convertSource(src, nil, c.logger)
}

func (c *Converter) convertSource(src Source, state *State, logger *slog.Logger) FileResult {
	start := c.now()
	res := FileResult{Source: src.Path, Output: c.OutputPath(src)}
	log := logger.With(logfields.File(src.Path))

	fail := func(err error) FileResult {
		res.Result = metrics.ResultFailed
		res.Err = err
		res.Duration = c.now().Sub(start)
		if state != nil {
			state.Forget(src.Path)
		}
		c.recorder.IncConversionResult(metrics.ResultFailed)
		log.Error("Conversion failed", logfields.Error(err))
		return res
	}

	content, err := os.ReadFile(src.Path)
	if err != nil {
		return fail(errors.WrapError(err, errors.CategoryFileSystem, "failed to read source").
			WithContext("path", src.Path).Build())
	}

	fingerprint := Fingerprint(content)
	if state != nil && state.Unchanged(src.Path, fingerprint) {
		res.Result = metrics.ResultSkipped
		res.Duration = c.now().Sub(start)
		c.recorder.IncConversionResult(metrics.ResultSkipped)
		log.Debug("Unchanged; skipping")
		return res
	}

	doc, err := c.ConvertBytes(content)
	if err != nil {
		return fail(withPath(err, src.Path))
	}

	data := []byte(doc.Markup + "\n")
	if err := writeOutput(res.Output, data); err != nil {
		return fail(err)
	}

	res.Result = metrics.ResultConverted
	res.Stats = doc.Stats
	res.Bytes = len(data)
	res.Duration = c.now().Sub(start)

	if state != nil {
		state.Record(src.Path, Entry{Fingerprint: fingerprint, Output: res.Output, ConvertedAt: c.now().UTC()})
	}

	c.recorder.IncConversionResult(metrics.ResultConverted)
	c.recorder.ObserveConversionDuration(res.Duration)
	c.recorder.ObserveOutputBytes(res.Bytes)
	c.recorder.AddUnresolvedReferences(doc.Stats.UnresolvedReferences)
	c.recorder.AddAbbreviations(doc.Stats.Annotations)

	log.Info("Converted document",
		logfields.Output(res.Output),
		logfields.Bytes(res.Bytes),
		logfields.UnresolvedRefs(doc.Stats.UnresolvedReferences),
		logfields.Abbreviations(doc.Stats.Annotations),
		logfields.DurationMS(float64(res.Duration.Microseconds())/1000))
	return res
}

func withPath(err error, path string) error {
	if classified, ok := errors.AsClassified(err); ok {
		return classified.WithContext("path", path)
	}
	return err
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to create output directory").
			WithContext("path", filepath.Dir(path)).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write output").
			WithContext("path", path).Build()
	}
	return nil
}
