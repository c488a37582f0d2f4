package aeroplane

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned for malformed tables, non-physical constants and invalid
	// simulation parameters. It is always detected before any simulation work starts.
	ErrConfiguration = errors.New("configuration error")
	// ErrTrimNotFound is returned when the trim root-find does not converge.
	ErrTrimNotFound = errors.New("trim not found")
	// ErrDivergedSimulation is returned when a step produces a non-finite state.
	ErrDivergedSimulation = errors.New("diverged simulation")
)

// ConfigError describes which part of the configuration is invalid.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrConfiguration, e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrConfiguration).
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

func configErrorf(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// TrimError carries the state of the root-find when it gave up.
type TrimError struct {
	Iterations int
	Alpha      float64 // last iterate (rad)
	Residual   float64
	Reason     string
}

func (e *TrimError) Error() string {
	return fmt.Sprintf("%s: %s after %d iterations (α=%g rad, residual=%g N)", ErrTrimNotFound, e.Reason, e.Iterations, e.Alpha, e.Residual)
}

// Unwrap allows errors.Is(err, ErrTrimNotFound).
func (e *TrimError) Unwrap() error {
	return ErrTrimNotFound
}

// DivergenceError reports the last valid sample before the state became non-finite.
type DivergenceError struct {
	Index int     // index in the history of the last valid sample
	Time  float64 // simulation time of the last valid sample
	Field string  // first non-finite field of the rejected state
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("%s: %s became non-finite after t=%g (sample #%d)", ErrDivergedSimulation, e.Field, e.Time, e.Index)
}

// Unwrap allows errors.Is(err, ErrDivergedSimulation).
func (e *DivergenceError) Unwrap() error {
	return ErrDivergedSimulation
}
