// Package telemetry wires OpenTelemetry tracing for the boardauth service.
package telemetry
