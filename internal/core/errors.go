package core

import (
	"errors"
	"fmt"
)

// Error taxonomy of the enhancement core. Callers match with errors.Is.
var (
	ErrInvalidSource    = errors.New("invalid source image")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// SourceError describes why a raster cannot be used as a render source.
type SourceError struct {
	Width  int
	Height int
	Reason string
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("invalid source image %dx%d: %s", e.Width, e.Height, e.Reason)
}

func (e *SourceError) Unwrap() error { return ErrInvalidSource }

// ParamError reports a parameter value outside its domain.
type ParamError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error { return ErrInvalidParameter }
