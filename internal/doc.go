// Package internal holds private helpers for boardauth: verification-code and
// opaque-token generation.
//
// # Sub-packages
//
//   - flows: use-case orchestration behind every Engine method
//   - keys: store key scheme
//   - rate: Redis-backed fixed-window limiters
//   - stores: verification-code and password-reset token managers
//   - ttlstore: TTL key-value contract and its Redis implementation
//   - httpapi: HTTP transport for the Engine
//   - config: environment-driven service configuration
//   - telemetry: OpenTelemetry tracing setup
package internal
