package metrics

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.ObserveConversionDuration(150 * time.Millisecond)
	pr.IncConversionResult(ResultConverted)
	pr.IncConversionResult(ResultConverted)
	pr.IncConversionResult(ResultFailed)
	pr.AddUnresolvedReferences(2)
	pr.AddUnresolvedReferences(0)
	pr.AddAbbreviations(5)
	pr.ObserveOutputBytes(1024)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.results.WithLabelValues(string(ResultConverted))), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.results.WithLabelValues(string(ResultFailed))), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.unresolved), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(pr.abbreviations), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 5)
}

func TestNilPrometheusRecorder(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.ObserveConversionDuration(time.Second)
		pr.IncConversionResult(ResultSkipped)
		pr.AddUnresolvedReferences(1)
		pr.AddAbbreviations(1)
		pr.ObserveOutputBytes(1)
	})
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncConversionResult(ResultConverted)
	r = NewPrometheusRecorder(nil)
	r.IncConversionResult(ResultConverted)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncConversionResult(ResultSkipped)

	path := filepath.Join(t.TempDir(), "mdead.prom")
	require.NoError(t, WriteTextfile(reg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `mdead_conversions_total{result="skipped"} 1`)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).AddAbbreviations(3)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mdead_abbreviations_total 3")
}
