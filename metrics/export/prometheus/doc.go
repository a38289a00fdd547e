// Package prometheus exposes boardauth Engine metrics as a
// prometheus.Collector.
//
// Values are read from Engine.MetricsSnapshot on every scrape; nothing is
// cached between scrapes.
package prometheus
