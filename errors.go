package imgstack

import (
	"errors"
	"fmt"
)

// ErrUnsupportedPixelType is returned when a source's samples are neither
// 8-bit nor 16-bit unsigned integers.
var ErrUnsupportedPixelType = errors.New("unsupported pixel type")

// ErrSeriesOutOfRange is returned when a container has no series at the
// requested index.
var ErrSeriesOutOfRange = errors.New("series index out of range")

// PlaneReadError reports a failed plane read. It aborts the whole decode.
type PlaneReadError struct {
	Z, C, T int
	Index   int
	Cause   error
}

// Error implements the error interface.
func (e *PlaneReadError) Error() string {
	return fmt.Sprintf("read plane %d (z=%d c=%d t=%d): %v", e.Index, e.Z, e.C, e.T, e.Cause)
}

// Unwrap returns the underlying read failure.
func (e *PlaneReadError) Unwrap() error {
	return e.Cause
}

// WarningKind classifies non-fatal conditions.
type WarningKind int

// Non-fatal conditions raised while decoding or resolving positions.
const (
	TooManyChannels WarningKind = iota + 1
	MultipleTimepoints
	MissingStageLabel
)

// String returns the warning kind's name.
func (k WarningKind) String() string {
	switch k {
	case TooManyChannels:
		return "TooManyChannels"
	case MultipleTimepoints:
		return "MultipleTimepoints"
	case MissingStageLabel:
		return "MissingStageLabel"
	default:
		return fmt.Sprintf("WarningKind(%d)", int(k))
	}
}

// Warning is a non-fatal condition. Processing continues with degraded
// behavior after a warning is raised.
type Warning struct {
	Kind    WarningKind
	Message string
}

// String formats the warning for display.
func (w Warning) String() string {
	return w.Kind.String() + ": " + w.Message
}

// WarningHandler receives warnings. It is called synchronously.
type WarningHandler func(Warning)
