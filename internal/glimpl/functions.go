// SPDX-License-Identifier: Unlicense OR MIT

//go:build cgo

// Package glimpl implements gl.Functions by calling entry points
// resolved through a proc address lookup.
package glimpl

/*
#cgo CFLAGS: -Werror

#include <stddef.h>

typedef unsigned int GLenum;
typedef unsigned int GLuint;
typedef unsigned int GLbitfield;
typedef int GLint;
typedef int GLsizei;
typedef float GLfloat;
typedef unsigned char GLubyte;

typedef struct {
	void (*glBindFramebuffer)(GLenum target, GLuint framebuffer);
	GLenum (*glCheckFramebufferStatus)(GLenum target);
	void (*glClear)(GLbitfield mask);
	void (*glClearColor)(GLfloat red, GLfloat green, GLfloat blue, GLfloat alpha);
	void (*glDisable)(GLenum cap);
	GLenum (*glGetError)(void);
	void (*glGetIntegerv)(GLenum pname, GLint *data);
	const GLubyte *(*glGetString)(GLenum name);
	void (*glPixelStorei)(GLenum pname, GLint param);
	void (*glReadPixels)(GLint x, GLint y, GLsizei width, GLsizei height, GLenum format, GLenum type, void *data);
	void (*glViewport)(GLint x, GLint y, GLsizei width, GLsizei height);
} glimpl_funcs;

static void glimpl_glBindFramebuffer(glimpl_funcs *f, GLenum target, GLuint framebuffer) {
	f->glBindFramebuffer(target, framebuffer);
}

static GLenum glimpl_glCheckFramebufferStatus(glimpl_funcs *f, GLenum target) {
	return f->glCheckFramebufferStatus(target);
}

static void glimpl_glClear(glimpl_funcs *f, GLbitfield mask) {
	f->glClear(mask);
}

static void glimpl_glClearColor(glimpl_funcs *f, GLfloat red, GLfloat green, GLfloat blue, GLfloat alpha) {
	f->glClearColor(red, green, blue, alpha);
}

static void glimpl_glDisable(glimpl_funcs *f, GLenum cap) {
	f->glDisable(cap);
}

static GLenum glimpl_glGetError(glimpl_funcs *f) {
	return f->glGetError();
}

static void glimpl_glGetIntegerv(glimpl_funcs *f, GLenum pname, GLint *data) {
	f->glGetIntegerv(pname, data);
}

static const GLubyte *glimpl_glGetString(glimpl_funcs *f, GLenum name) {
	return f->glGetString(name);
}

static void glimpl_glPixelStorei(glimpl_funcs *f, GLenum pname, GLint param) {
	f->glPixelStorei(pname, param);
}

static void glimpl_glReadPixels(glimpl_funcs *f, GLint x, GLint y, GLsizei width, GLsizei height, GLenum format, GLenum type, void *data) {
	f->glReadPixels(x, y, width, height, format, type, data);
}

static void glimpl_glViewport(glimpl_funcs *f, GLint x, GLint y, GLsizei width, GLsizei height) {
	f->glViewport(x, y, width, height);
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"gioui.org/glsurface/gpu/gl"
)

// Functions calls into resolved GL entry points. It is only valid while
// the context it was loaded for is current.
type Functions struct {
	f C.glimpl_funcs
	// Query cache.
	ints [4]C.GLint
}

var _ gl.Functions = (*Functions)(nil)

// Load resolves every entry point through lookup.
func Load(lookup func(name string) unsafe.Pointer) (gl.Functions, error) {
	f := new(Functions)
	procs := []struct {
		name string
		ptr  **[0]byte
	}{
		{"glBindFramebuffer", &f.f.glBindFramebuffer},
		{"glCheckFramebufferStatus", &f.f.glCheckFramebufferStatus},
		{"glClear", &f.f.glClear},
		{"glClearColor", &f.f.glClearColor},
		{"glDisable", &f.f.glDisable},
		{"glGetError", &f.f.glGetError},
		{"glGetIntegerv", &f.f.glGetIntegerv},
		{"glGetString", &f.f.glGetString},
		{"glPixelStorei", &f.f.glPixelStorei},
		{"glReadPixels", &f.f.glReadPixels},
		{"glViewport", &f.f.glViewport},
	}
	for _, p := range procs {
		addr := lookup(p.name)
		if addr == nil {
			return nil, fmt.Errorf("glimpl: failed to resolve %s", p.name)
		}
		*p.ptr = (*[0]byte)(addr)
	}
	return f, nil
}

func (f *Functions) BindFramebuffer(target gl.Enum, fb gl.Framebuffer) {
	C.glimpl_glBindFramebuffer(&f.f, C.GLenum(target), C.GLuint(fb.V))
}

func (f *Functions) CheckFramebufferStatus(target gl.Enum) gl.Enum {
	return gl.Enum(C.glimpl_glCheckFramebufferStatus(&f.f, C.GLenum(target)))
}

func (f *Functions) Clear(mask gl.Enum) {
	C.glimpl_glClear(&f.f, C.GLbitfield(mask))
}

func (f *Functions) ClearColor(red, green, blue, alpha float32) {
	C.glimpl_glClearColor(&f.f, C.GLfloat(red), C.GLfloat(green), C.GLfloat(blue), C.GLfloat(alpha))
}

func (f *Functions) Disable(cap gl.Enum) {
	C.glimpl_glDisable(&f.f, C.GLenum(cap))
}

func (f *Functions) GetError() gl.Enum {
	return gl.Enum(C.glimpl_glGetError(&f.f))
}

func (f *Functions) GetInteger(pname gl.Enum) int {
	C.glimpl_glGetIntegerv(&f.f, C.GLenum(pname), &f.ints[0])
	return int(f.ints[0])
}

func (f *Functions) GetString(pname gl.Enum) string {
	s := C.glimpl_glGetString(&f.f, C.GLenum(pname))
	if s == nil {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(s)))
}

func (f *Functions) PixelStorei(pname gl.Enum, param int) {
	C.glimpl_glPixelStorei(&f.f, C.GLenum(pname), C.GLint(param))
}

func (f *Functions) ReadPixels(x, y, width, height int, format, ty gl.Enum, data []byte) {
	var p unsafe.Pointer
	if len(data) > 0 {
		p = unsafe.Pointer(&data[0])
	}
	C.glimpl_glReadPixels(&f.f, C.GLint(x), C.GLint(y), C.GLsizei(width), C.GLsizei(height), C.GLenum(format), C.GLenum(ty), p)
}

func (f *Functions) Viewport(x, y, width, height int) {
	C.glimpl_glViewport(&f.f, C.GLint(x), C.GLint(y), C.GLsizei(width), C.GLsizei(height))
}
