// Package config loads the boardauth service configuration from the
// environment.
package config
