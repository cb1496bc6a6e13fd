package packing

import (
	"errors"
	"fmt"
)

// Error classes, checked with errors.Is. Capability errors mean the active
// backend cannot handle the requested combination and the caller should
// fall back to another backend or bit depth; validation errors mean the
// input itself is malformed and is rejected before any backend runs.
var (
	// ErrCapability classifies errors the caller can recover from by
	// selecting a different backend or bit depth.
	ErrCapability = errors.New("packer capability error")

	// ErrValidation classifies malformed input rejected synchronously.
	ErrValidation = errors.New("packer validation error")
)

var (
	// ErrAlphaUnsupported indicates the active backend cannot pack frames
	// with a separate alpha plane.
	ErrAlphaUnsupported = fmt.Errorf("%w: backend cannot pack alpha", ErrCapability)

	// ErrNativeUnavailable indicates no native fast path implementation has
	// been registered.
	ErrNativeUnavailable = fmt.Errorf("%w: no native packer registered", ErrCapability)

	// ErrZeroDimension indicates a zero width or height input.
	ErrZeroDimension = fmt.Errorf("%w: zero width or height", ErrValidation)

	// ErrUnsupportedFormat indicates an input color family, bit depth or
	// alpha combination the packing algorithms do not define.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported input format or alpha type", ErrValidation)

	// ErrNoConverter indicates a frame needed colorspace conversion but no
	// engine converter was supplied.
	ErrNoConverter = fmt.Errorf("%w: frame needs conversion but no converter is available", ErrCapability)
)
