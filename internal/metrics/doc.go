// Package metrics records conversion metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so call sites never check for nil:
//
//	conv := convert.New(cfg, convert.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// PrometheusRecorder registers its collectors on a caller-supplied registry.
// Batch runs export that registry with WriteTextfile for the node_exporter
// textfile collector; watch mode can serve it over HTTP with HTTPHandler.
package metrics
