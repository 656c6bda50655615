// Package metrics provides build metrics for sitebuilder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is the
// default and does nothing; PrometheusRecorder registers collectors on a
// registry which WriteTextfile can dump in the node_exporter textfile format
// after a build. There is no HTTP listener: sitebuilder is a one-shot CLI.
//
//	reg := prom.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	// ... run build with rec ...
//	_ = metrics.WriteTextfile("/var/lib/node_exporter/sitebuilder.prom", reg)
package metrics
