package packing

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
)

// NativePackFunc is the signature an externally provided accelerated
// packing implementation must satisfy. It receives an already-validated
// planar RGB frame without alpha and must reproduce the exact output of the
// scalar reference backend for the given bit depth.
type NativePackFunc func(src *frame.Frame, bitDepth int) (*PixelBuffer, error)

var (
	nativeMu   sync.RWMutex
	nativeName string
	nativeFn   NativePackFunc
)

// RegisterNative installs an accelerated packing implementation, making the
// native backend (and auto selection of it) available. Registering nil
// removes the implementation.
func RegisterNative(name string, fn NativePackFunc) {
	nativeMu.Lock()
	nativeName = name
	nativeFn = fn
	nativeMu.Unlock()
	if fn != nil {
		logrus.WithField("native", name).Debug("Registered native packer")
	}
}

// NativeAvailable reports whether a native implementation is registered.
func NativeAvailable() bool {
	nativeMu.RLock()
	defer nativeMu.RUnlock()
	return nativeFn != nil
}

// nativePacker delegates to the registered accelerated implementation.
// Alpha input is a capability error; callers fall back to another backend.
type nativePacker struct {
	depth int
}

func (p *nativePacker) Name() string {
	nativeMu.RLock()
	defer nativeMu.RUnlock()
	if nativeName != "" {
		return nativeName
	}
	return string(MethodNative)
}

func (p *nativePacker) BitDepth() int { return p.depth }

// SupportsAlpha is false: alpha packing has not been implemented by the
// native fast paths.
func (p *nativePacker) SupportsAlpha() bool { return false }

func (p *nativePacker) Pack(src, alpha *frame.Frame) (*PixelBuffer, error) {
	if alpha != nil {
		return nil, fmt.Errorf("%w: %q", ErrAlphaUnsupported, p.Name())
	}
	if err := validatePack(src, nil, p.depth); err != nil {
		return nil, err
	}

	nativeMu.RLock()
	fn := nativeFn
	nativeMu.RUnlock()
	if fn == nil {
		return nil, ErrNativeUnavailable
	}
	return fn(src, p.depth)
}
