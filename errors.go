package main

import (
	"errors"
	"fmt"
)

// ErrNoImages is returned when discovery finds nothing to show.
var ErrNoImages = errors.New("no matching image files found")

var errNoResource = errors.New("loader returned no image")

// DiscoveryError reports a file-system failure while walking the image folder.
// Collection stops for the failing branch only.
type DiscoveryError struct {
	Path string
	Err  error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("scanning %s: %v", e.Path, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// LoadError reports an image that could not be read or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// StartupConfigError is a bad command line or configuration value detected
// before any window is created.
type StartupConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *StartupConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
