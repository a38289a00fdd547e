// Package otel exports boardauth Engine metrics through OpenTelemetry
// observable instruments registered on a metric.Meter.
package otel
