package deck

import (
	"errors"
	"fmt"
)

// ErrSlideNotFound indicates no slide carries the requested anchor shape.
var ErrSlideNotFound = errors.New("slide not found")

// ErrShapeNotFound indicates no shape with the requested name exists on the surface.
var ErrShapeNotFound = errors.New("shape not found")

// ErrNotAPicture indicates the resolved shape is not a picture shape.
var ErrNotAPicture = errors.New("shape is not a picture")

// ErrNoTextFrame indicates the resolved shape has no text body.
var ErrNoTextFrame = errors.New("shape has no text frame")

// SlideNotFoundError carries the anchor shape name that was searched for.
type SlideNotFoundError struct {
	Key    string
	Anchor string
}

func (e *SlideNotFoundError) Error() string {
	return fmt.Sprintf("slide with key %q not found (expected anchor shape name %q)", e.Key, e.Anchor)
}

func (e *SlideNotFoundError) Unwrap() error { return ErrSlideNotFound }

// ShapeNotFoundError carries the shape name and the surface it was searched on.
type ShapeNotFoundError struct {
	Name    string
	Surface string // slide or layout part path
}

func (e *ShapeNotFoundError) Error() string {
	return fmt.Sprintf("shape %q not found on %s", e.Name, e.Surface)
}

func (e *ShapeNotFoundError) Unwrap() error { return ErrShapeNotFound }
