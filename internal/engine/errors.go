package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotActivated is returned when the license key cannot be read.
	ErrNotActivated = errors.New("engine: activation failed")

	// ErrLoad is the sentinel behind every model parse/compile failure.
	ErrLoad = errors.New("engine: could not load model")
)

// LoadError carries the parser diagnostic for a failed model load.
type LoadError struct {
	Path string
	Msg  string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Load model error: %s", e.Msg)
}

func (e *LoadError) Unwrap() error {
	return ErrLoad
}

func loadErrorf(path, format string, args ...any) error {
	return &LoadError{Path: path, Msg: fmt.Sprintf(format, args...)}
}
