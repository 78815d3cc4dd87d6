// SPDX-License-Identifier: Unlicense OR MIT

package glsurface

import (
	"errors"
	"fmt"
)

// Kind classifies the errors returned by a Session.
type Kind uint8

const (
	// KindSurface errors come from the platform provider: connection,
	// adapter, device, context and surface operations.
	KindSurface Kind = iota
	// KindGL errors come from loading or initializing the GL backend.
	KindGL
	// KindFramebuffer errors come from building a render target.
	KindFramebuffer
)

var (
	ErrSurface     = errors.New("surface error")
	ErrGL          = errors.New("GL error")
	ErrFramebuffer = errors.New("framebuffer error")

	// ErrNoSurface means the provider reported no surface bound to the
	// context even though unbinding succeeded.
	ErrNoSurface = errors.New("glsurface: no surface bound to context")
	// ErrReleased is returned by methods of a released Session.
	ErrReleased = errors.New("glsurface: session released")
)

// Error is the error type returned by a Session. It matches one of
// ErrSurface, ErrGL or ErrFramebuffer with errors.Is and unwraps to
// the underlying cause.
type Error struct {
	Kind Kind
	// Op is the failed operation, such as "bind" or "present".
	Op  string
	Err error
}

func (k Kind) sentinel() error {
	switch k {
	case KindGL:
		return ErrGL
	case KindFramebuffer:
		return ErrFramebuffer
	default:
		return ErrSurface
	}
}

func (k Kind) String() string {
	return k.sentinel().Error()
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func surfaceErr(op string, err error) error {
	return &Error{Kind: KindSurface, Op: op, Err: err}
}
