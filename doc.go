// SPDX-License-Identifier: Unlicense OR MIT

/*
Package glsurface binds the surface of a window created by an external
windowing system to an OpenGL context and manages the surface across
presentation and resizing.

A Session is created from a platform.Provider, such as the EGL provider
in package platform/egl, and a platform.Window:

	runtime.LockOSThread()
	s, err := glsurface.New(egl.Provider{}, win)
	if err != nil {
		...
	}
	defer s.Release()
	for {
		t, err := s.BackBuffer()
		...
		t.Clear(color.NRGBA{A: 0xff})
		if err := s.SwapBuffers(); err != nil {
			...
		}
	}

The Session does not see window events; call SetSize when the window
drawable size changes.

Errors returned by a Session are *Error values matching one of
ErrSurface, ErrGL or ErrFramebuffer.
*/
package glsurface
