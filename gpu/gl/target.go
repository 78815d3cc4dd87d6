// SPDX-License-Identifier: Unlicense OR MIT

package gl

import (
	"fmt"
	"image"
	"image/color"
)

// Target is a render destination backed by the back buffer of a
// surface.
type Target struct {
	backend *Backend
	fbo     Framebuffer
	size    image.Point
}

// Size returns the dimensions of the target in pixels.
func (t *Target) Size() image.Point {
	return t.size
}

// Bind makes t the destination of subsequent draw calls.
func (t *Target) Bind() {
	f := t.backend.funcs
	f.BindFramebuffer(FRAMEBUFFER, t.fbo)
	f.Viewport(0, 0, t.size.X, t.size.Y)
}

// Clear fills the whole target with col and resets its depth and
// stencil buffers.
func (t *Target) Clear(col color.NRGBA) {
	t.Bind()
	f := t.backend.funcs
	f.Disable(SCISSOR_TEST)
	f.ClearColor(float32(col.R)/0xff, float32(col.G)/0xff, float32(col.B)/0xff, float32(col.A)/0xff)
	f.Clear(COLOR_BUFFER_BIT | DEPTH_BUFFER_BIT | STENCIL_BUFFER_BIT)
}

// ReadPixels copies the target content at origin img.Rect.Min into
// img. The target must be read before the surface is presented.
func (t *Target) ReadPixels(img *image.RGBA) error {
	if !t.backend.caps.ReadPixels {
		return ErrNoReadPixels
	}
	r := img.Bounds().Intersect(image.Rectangle{Max: t.size})
	if r.Empty() {
		return nil
	}
	f := t.backend.funcs
	f.BindFramebuffer(READ_FRAMEBUFFER, t.fbo)
	f.PixelStorei(PACK_ALIGNMENT, 1)
	w, h := r.Dx(), r.Dy()
	buf := make([]byte, w*h*4)
	// GL rows start at the bottom of the target.
	f.ReadPixels(r.Min.X, t.size.Y-r.Max.Y, w, h, RGBA, UNSIGNED_BYTE, buf)
	if e := f.GetError(); e != NO_ERROR {
		return fmt.Errorf("gl: glReadPixels: %s (0x%x)", errorString(e), uint(e))
	}
	stride := w * 4
	for y := 0; y < h; y++ {
		src := buf[(h-1-y)*stride : (h-y)*stride]
		off := img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(img.Pix[off:off+stride], src)
	}
	return nil
}
