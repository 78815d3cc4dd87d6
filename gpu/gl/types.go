// SPDX-License-Identifier: Unlicense OR MIT

package gl

import "unsafe"

// Framebuffer names a framebuffer object. The zero value is the
// window-system framebuffer.
type Framebuffer struct{ V uint }

// Functions is the subset of OpenGL a Backend calls.
type Functions interface {
	GetString(pname Enum) string
	GetInteger(pname Enum) int
	GetError() Enum
	BindFramebuffer(target Enum, fb Framebuffer)
	CheckFramebufferStatus(target Enum) Enum
	Viewport(x, y, width, height int)
	ClearColor(red, green, blue, alpha float32)
	Clear(mask Enum)
	Disable(cap Enum)
	PixelStorei(pname Enum, param int)
	ReadPixels(x, y, width, height int, format, ty Enum, data []byte)
}

// Loader resolves Functions through lookup, which returns the address
// of a GL entry point or nil.
type Loader func(lookup func(name string) unsafe.Pointer) (Functions, error)

// Context is implemented by values that own a current GL context and
// the Backend bound to it.
type Context interface {
	Backend() *Backend
}
