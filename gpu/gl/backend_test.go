// SPDX-License-Identifier: Unlicense OR MIT

package gl_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/glsurface/gpu/gl"
	"gioui.org/glsurface/gpu/gl/gltest"
)

func TestNewBackendCore33(t *testing.T) {
	f := gltest.New()
	b, err := gl.NewBackend(f, gl.Config{API: gl.Core33})
	require.NoError(t, err)
	caps := b.Caps()
	assert.Equal(t, [2]int{3, 3}, caps.Version)
	assert.False(t, caps.ES)
	assert.Equal(t, 8192, caps.MaxTextureSize)
	assert.False(t, caps.ReadPixels, "read-back without ReadBack")
	assert.Equal(t, gl.GLSL330, b.ShaderVersion())
}

func TestNewBackendErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *gltest.Functions)
		cfg   gl.Config
		query string
	}{
		{"bad version", func(f *gltest.Functions) { f.Version = "garbage" }, gl.Config{API: gl.Core33}, "GL_VERSION"},
		{"old version", func(f *gltest.Functions) { f.Version = "3.2.0" }, gl.Config{API: gl.Core33}, "GL_VERSION"},
		{"es context", func(f *gltest.Functions) {
			f.Version = "OpenGL ES 3.2 Mesa"
			f.GLSL = "OpenGL ES GLSL ES 3.20"
		}, gl.Config{API: gl.Core33}, "GL_VERSION"},
		{"bad glsl", func(f *gltest.Functions) { f.GLSL = "" }, gl.Config{API: gl.Core33}, "GL_SHADING_LANGUAGE_VERSION"},
		{"shader too new", func(f *gltest.Functions) {}, gl.Config{API: gl.Compat, ShaderVersion: gl.GLSL450}, "GL_SHADING_LANGUAGE_VERSION"},
		{"gl error", func(f *gltest.Functions) { f.Errors = []gl.Enum{gl.INVALID_ENUM} }, gl.Config{API: gl.Core33}, "glGetError"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := gltest.New()
			test.setup(f)
			_, err := gl.NewBackend(f, test.cfg)
			var qerr *gl.StateQueryError
			require.ErrorAs(t, err, &qerr)
			assert.Equal(t, test.query, qerr.Query)
		})
	}
}

func TestNewBackendCompat(t *testing.T) {
	f := gltest.New()
	f.Version = "OpenGL ES 3.2 Mesa 23.0"
	f.GLSL = "OpenGL ES GLSL ES 3.20"
	b, err := gl.NewBackend(f, gl.Config{API: gl.Compat, ShaderVersion: gl.GLSL300ES})
	require.NoError(t, err)
	assert.True(t, b.Caps().ES)
	assert.Equal(t, "#version 300 es", b.ShaderVersion().Directive())
}

func TestReadBackCapability(t *testing.T) {
	for _, api := range []gl.API{gl.Core33, gl.Compat} {
		for _, readBack := range []bool{false, true} {
			b, err := gl.NewBackend(gltest.New(), gl.Config{API: api, ReadBack: readBack})
			require.NoError(t, err)
			assert.Equal(t, readBack, b.Caps().ReadPixels, "api %v, read-back %v", api, readBack)
		}
	}
}

func TestBackBuffer(t *testing.T) {
	f := gltest.New()
	f.DrawFramebuffer = gl.Framebuffer{V: 3}
	b, err := gl.NewBackend(f, gl.Config{})
	require.NoError(t, err)
	f.DrawFramebuffer = gl.Framebuffer{}
	sz := image.Pt(800, 600)
	target, err := b.BackBuffer(sz)
	require.NoError(t, err)
	assert.Equal(t, sz, target.Size())
	assert.Equal(t, uint(3), f.DrawFramebuffer.V, "back buffer must bind the default framebuffer")
	want := image.Rectangle{Max: sz}
	assert.Equal(t, want, f.ViewportRect)
}

func TestBackBufferErrors(t *testing.T) {
	f := gltest.New()
	b, err := gl.NewBackend(f, gl.Config{})
	require.NoError(t, err)
	var ferr *gl.FramebufferError
	_, err = b.BackBuffer(image.Pt(0, 600))
	assert.ErrorAs(t, err, &ferr, "empty size")
	f.FramebufferStatus = 0x8219
	_, err = b.BackBuffer(image.Pt(10, 10))
	assert.ErrorAs(t, err, &ferr, "incomplete framebuffer")
	f.FramebufferStatus = 0
	f.Errors = []gl.Enum{gl.OUT_OF_MEMORY}
	_, err = b.BackBuffer(image.Pt(10, 10))
	assert.ErrorAs(t, err, &ferr, "GL error")
}
