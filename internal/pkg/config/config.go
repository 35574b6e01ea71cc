// Package config exposes typed, read-only access to runtime configuration.
//
// Code outside this package depends on the Config interface only, so tests can
// feed configuration from memory (see NewViperFromBytes) instead of a file.
package config

import (
	"io"
	"time"
)

// DurationConfig defines helpers for values stored as whole numbers of a unit.
type DurationConfig interface {
	// GetMillisecond reads the value for key as a number of milliseconds.
	GetMillisecond(key string) time.Duration

	// GetSecond reads the value for key as a number of seconds.
	GetSecond(key string) time.Duration
}

// Config defines a set of methods for retrieving configuration values of various types.
//
// Missing keys yield the zero value of the requested type.
type Config interface {
	io.Closer
	DurationConfig

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetArray retrieves the value for key as a slice of strings.
	// Configuration value is stored with format <element1>,<element2>,...
	// Elements are trimmed and empty elements are dropped.
	GetArray(key string) []string
}
