// SPDX-License-Identifier: Unlicense OR MIT

// Package platform defines the native surface provider a glsurface.Session
// is built on: connections, devices, rendering contexts and the window
// surfaces bound to them.
//
// Implementations are assumed correct; callers specify only the order of
// calls and what happens when one fails.
package platform

import (
	"fmt"
	"image"
	"unsafe"

	"gioui.org/glsurface/gpu/gl"
)

// Window is a native window created by an external windowing system.
type Window interface {
	// NativeDisplay returns the platform display connection, for
	// example an Xlib Display pointer. It may be nil where the
	// platform has a default display.
	NativeDisplay() unsafe.Pointer
	// NativeWindow returns the platform window handle, for example
	// an X11 window id or a Win32 HWND.
	NativeWindow() uintptr
}

// Provider opens connections to a native graphics-surface provider.
type Provider interface {
	Connect(w Window) (Connection, error)
}

// FunctionLoader is implemented by providers that know how to turn
// proc addresses into GL functions.
type FunctionLoader interface {
	Loader() gl.Loader
}

// Connection is a connection to the provider scoped to one window.
type Connection interface {
	NewNativeWidget(w Window) (NativeWidget, error)
	// NewHardwareAdapter returns the first suitable hardware adapter.
	NewHardwareAdapter() (Adapter, error)
	NewDevice(a Adapter) (Device, error)
}

// Device creates, binds and destroys contexts and surfaces.
type Device interface {
	NewContextDescriptor(attrs ContextAttributes) (ContextDescriptor, error)
	NewContext(desc ContextDescriptor, share Context) (Context, error)
	// DestroyContext destroys ctx and any surface still bound to it.
	DestroyContext(ctx Context) error
	MakeCurrent(ctx Context) error
	// ProcAddress returns the address of the named GL function for ctx,
	// or nil.
	ProcAddress(ctx Context, name string) unsafe.Pointer

	NewSurface(ctx Context, access SurfaceAccess, typ SurfaceType) (Surface, error)
	DestroySurface(ctx Context, s Surface) error
	// BindSurface binds s to ctx. On failure the caller keeps
	// ownership of s.
	BindSurface(ctx Context, s Surface) error
	// UnbindSurface detaches and returns the surface bound to ctx. The
	// result is nil if no surface was bound.
	UnbindSurface(ctx Context) (Surface, error)
	Present(ctx Context, s Surface) error
	// ResizeSurface sets the size of the unbound surface s. For widget
	// surfaces size must be the drawable size of the native widget.
	ResizeSurface(ctx Context, s Surface, size image.Point) error
	SurfaceInfo(s Surface) SurfaceInfo
	// ContextSurfaceInfo describes the surface bound to ctx, or returns
	// nil if there is none.
	ContextSurfaceInfo(ctx Context) (*SurfaceInfo, error)

	// Close releases the device. Every context must be destroyed first.
	Close() error
}

// Opaque provider handles. Their dynamic types belong to the Provider
// that created them.
type (
	Adapter           interface{}
	ContextDescriptor interface{}
	Context           interface{}
	Surface           interface{}
	NativeWidget      interface{}
)

// GLVersion is a requested OpenGL version.
type GLVersion struct {
	Major, Minor int
}

func (v GLVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

type ContextAttributeFlags uint8

const (
	ContextAlpha ContextAttributeFlags = 1 << iota
	ContextDepth
	ContextStencil
	// ContextCompatibility requests a compatibility rather than a core
	// profile.
	ContextCompatibility
)

// ContextAttributes describes the capabilities requested of a context.
type ContextAttributes struct {
	Version GLVersion
	Flags   ContextAttributeFlags
}

// SurfaceAccess controls which processors may touch surface memory.
type SurfaceAccess uint8

const (
	// GPUOnly surfaces are never read back on the host.
	GPUOnly SurfaceAccess = iota
	// GPUCPU surfaces can be read by the CPU.
	GPUCPU
	// GPUCPUWriteCombined surfaces are CPU readable through
	// write-combined memory.
	GPUCPUWriteCombined
)

func (a SurfaceAccess) String() string {
	switch a {
	case GPUOnly:
		return "gpu"
	case GPUCPU:
		return "gpu-cpu"
	case GPUCPUWriteCombined:
		return "gpu-cpu-write-combined"
	default:
		return fmt.Sprintf("SurfaceAccess(%d)", uint8(a))
	}
}

// CPUReadable reports whether the access mode permits host read-back.
func (a SurfaceAccess) CPUReadable() bool {
	return a != GPUOnly
}

// SurfaceType describes what a new surface is attached to. Only
// surfaces anchored to a native widget exist.
type SurfaceType struct {
	Widget NativeWidget
}

// Widget returns the SurfaceType of a surface anchored to w.
func Widget(w NativeWidget) SurfaceType {
	return SurfaceType{Widget: w}
}

// SurfaceInfo describes a surface.
type SurfaceInfo struct {
	Size   image.Point
	Access SurfaceAccess
}
