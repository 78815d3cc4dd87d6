// SPDX-License-Identifier: Unlicense OR MIT

// Package gltest provides an in-memory implementation of gl.Functions.
package gltest

import (
	"image"
	"unsafe"

	"gioui.org/glsurface/gpu/gl"
)

// Functions records the state a Backend sets and answers state
// queries from its fields.
type Functions struct {
	Version  string
	GLSL     string
	Vendor   string
	Renderer string
	Ints     map[gl.Enum]int
	// FramebufferStatus is returned by CheckFramebufferStatus; zero
	// means FRAMEBUFFER_COMPLETE.
	FramebufferStatus gl.Enum
	// Errors are returned by GetError in order, then NO_ERROR.
	Errors []gl.Enum
	// Pixels backs ReadPixels. It is stored bottom row first, as GL
	// reads it, and is Size large.
	Pixels []byte
	Size   image.Point

	DrawFramebuffer gl.Framebuffer
	ReadFramebuffer gl.Framebuffer
	ViewportRect    image.Rectangle
	ClearRGBA       [4]float32
	Cleared         gl.Enum
	Enabled         map[gl.Enum]bool
}

// New returns Functions describing an OpenGL 3.3 core context.
func New() *Functions {
	return &Functions{
		Version:  "3.3.0 Core Profile",
		GLSL:     "3.30",
		Vendor:   "gltest",
		Renderer: "gltest",
		Ints: map[gl.Enum]int{
			gl.MAX_TEXTURE_SIZE: 8192,
		},
		Enabled: make(map[gl.Enum]bool),
	}
}

// Loader returns a gl.Loader that resolves every name through lookup
// and then returns f. Names for which lookup returns nil are appended
// to missing, if non-nil.
func (f *Functions) Loader(missing *[]string) gl.Loader {
	return func(lookup func(string) unsafe.Pointer) (gl.Functions, error) {
		for _, name := range Names {
			if lookup(name) == nil && missing != nil {
				*missing = append(*missing, name)
			}
		}
		return f, nil
	}
}

// Names lists the entry points a gl.Functions implementation resolves.
var Names = []string{
	"glBindFramebuffer",
	"glCheckFramebufferStatus",
	"glClear",
	"glClearColor",
	"glDisable",
	"glGetError",
	"glGetIntegerv",
	"glGetString",
	"glPixelStorei",
	"glReadPixels",
	"glViewport",
}

func (f *Functions) GetString(pname gl.Enum) string {
	switch pname {
	case gl.VERSION:
		return f.Version
	case gl.SHADING_LANGUAGE_VERSION:
		return f.GLSL
	case gl.VENDOR:
		return f.Vendor
	case gl.RENDERER:
		return f.Renderer
	}
	return ""
}

func (f *Functions) GetInteger(pname gl.Enum) int {
	if pname == gl.FRAMEBUFFER_BINDING {
		return int(f.DrawFramebuffer.V)
	}
	return f.Ints[pname]
}

func (f *Functions) GetError() gl.Enum {
	if len(f.Errors) == 0 {
		return gl.NO_ERROR
	}
	e := f.Errors[0]
	f.Errors = f.Errors[1:]
	return e
}

func (f *Functions) BindFramebuffer(target gl.Enum, fb gl.Framebuffer) {
	switch target {
	case gl.FRAMEBUFFER:
		f.DrawFramebuffer, f.ReadFramebuffer = fb, fb
	case gl.DRAW_FRAMEBUFFER:
		f.DrawFramebuffer = fb
	case gl.READ_FRAMEBUFFER:
		f.ReadFramebuffer = fb
	}
}

func (f *Functions) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	if f.FramebufferStatus == 0 {
		return gl.FRAMEBUFFER_COMPLETE
	}
	return f.FramebufferStatus
}

func (f *Functions) Viewport(x, y, width, height int) {
	f.ViewportRect = image.Rect(x, y, x+width, y+height)
}

func (f *Functions) ClearColor(red, green, blue, alpha float32) {
	f.ClearRGBA = [4]float32{red, green, blue, alpha}
}

func (f *Functions) Clear(mask gl.Enum) {
	f.Cleared |= mask
}

func (f *Functions) Disable(cap gl.Enum) {
	delete(f.Enabled, cap)
}

func (f *Functions) PixelStorei(pname gl.Enum, param int) {
	f.Ints[pname] = param
}

func (f *Functions) ReadPixels(x, y, width, height int, format, ty gl.Enum, data []byte) {
	stride := f.Size.X * 4
	for row := 0; row < height; row++ {
		src := (y+row)*stride + x*4
		copy(data[row*width*4:(row+1)*width*4], f.Pixels[src:src+width*4])
	}
}
