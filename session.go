// SPDX-License-Identifier: Unlicense OR MIT

package glsurface

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"unsafe"

	"gioui.org/glsurface/gpu/gl"
	"gioui.org/glsurface/platform"
)

// Session binds the surface of a native window to an OpenGL context.
//
// The surface is bound to the context whenever no method is running.
// Methods that need the surface at the device level unbind it, operate
// and bind it again before they return, successful or not.
//
// The context is made current on the calling thread by New. A Session
// is not safe for concurrent use, and all methods must be called from
// the OS thread that called New, typically the thread running the
// window event loop.
//
// The Session cannot observe window resizes. Callers must call SetSize
// whenever the drawable size of the window changes.
type Session struct {
	log *slog.Logger
	// dev and ctx are set by New and cleared only by Release.
	dev platform.Device
	ctx platform.Context
	// detached holds the surface if binding it to ctx failed.
	detached platform.Surface
	access   platform.SurfaceAccess
	backend  *gl.Backend
	// presentOnAcquire is set for backends that present the surface
	// while acquiring the back buffer.
	presentOnAcquire bool
}

var _ gl.Context = (*Session)(nil)

// contextAttributes returns the attributes requested of a context for api.
func contextAttributes(api gl.API) platform.ContextAttributes {
	attrs := platform.ContextAttributes{
		Version: platform.GLVersion{Major: 3, Minor: 3},
		Flags:   platform.ContextAlpha | platform.ContextDepth | platform.ContextStencil,
	}
	if api == gl.Compat {
		attrs.Flags |= platform.ContextCompatibility
	}
	return attrs
}

// New creates a Session for the window w using the provider p. It
// either returns a ready Session or releases everything it created.
func New(p platform.Provider, w platform.Window, opts ...Option) (*Session, error) {
	o := newOptions(p, opts)
	log := o.log()
	conn, err := p.Connect(w)
	if err != nil {
		return nil, surfaceErr("connect", err)
	}
	widget, err := conn.NewNativeWidget(w)
	if err != nil {
		return nil, surfaceErr("create native widget", err)
	}
	adapter, err := conn.NewHardwareAdapter()
	if err != nil {
		return nil, surfaceErr("create hardware adapter", err)
	}
	dev, err := conn.NewDevice(adapter)
	if err != nil {
		return nil, surfaceErr("create device", err)
	}
	log.Debug("device created")
	attrs := contextAttributes(o.api)
	desc, err := dev.NewContextDescriptor(attrs)
	if err != nil {
		closeDevice(log, dev)
		return nil, surfaceErr("create context descriptor", err)
	}
	ctx, err := dev.NewContext(desc, nil)
	if err != nil {
		closeDevice(log, dev)
		return nil, surfaceErr("create context", err)
	}
	log.Debug("context created", "version", attrs.Version)
	s := &Session{
		log:              log,
		dev:              dev,
		ctx:              ctx,
		access:           o.surfaceAccess(),
		presentOnAcquire: o.api == gl.Core33,
	}
	surf, err := dev.NewSurface(ctx, s.access, platform.Widget(widget))
	if err != nil {
		s.Release()
		return nil, surfaceErr("create surface", err)
	}
	log.Debug("surface created", "size", dev.SurfaceInfo(surf).Size)
	if err := dev.BindSurface(ctx, surf); err != nil {
		s.detached = surf
		s.Release()
		return nil, surfaceErr("bind", err)
	}
	if err := dev.MakeCurrent(ctx); err != nil {
		s.Release()
		return nil, surfaceErr("make current", err)
	}
	if err := s.loadBackend(o); err != nil {
		s.Release()
		return nil, err
	}
	caps := s.backend.Caps()
	log.Info("session ready",
		"gl", fmt.Sprintf("%d.%d", caps.Version[0], caps.Version[1]),
		"renderer", caps.Renderer,
		"access", s.access)
	return s, nil
}

func (o *options) log() *slog.Logger {
	return o.logger.With("api", o.api.String())
}

func (s *Session) loadBackend(o options) error {
	if o.loader == nil {
		return &Error{Kind: KindGL, Op: "load functions", Err: errors.New("no GL function loader")}
	}
	funcs, err := o.loader(func(name string) unsafe.Pointer {
		return s.dev.ProcAddress(s.ctx, name)
	})
	if err != nil {
		return &Error{Kind: KindGL, Op: "load functions", Err: err}
	}
	b, err := gl.NewBackend(funcs, gl.Config{
		API:           o.api,
		ShaderVersion: o.shader,
		ReadBack:      s.access.CPUReadable(),
	})
	if err != nil {
		return &Error{Kind: KindGL, Op: "init backend", Err: err}
	}
	s.backend = b
	return nil
}

// Backend returns the GL backend of the session context.
func (s *Session) Backend() *gl.Backend {
	return s.backend
}

// SurfaceAccess returns the access mode the surface was created with.
func (s *Session) SurfaceAccess() platform.SurfaceAccess {
	return s.access
}

// BackBuffer returns a render target for the back buffer of the
// surface, sized to the current surface size.
func (s *Session) BackBuffer() (*gl.Target, error) {
	var size image.Point
	err := s.withSurface("back buffer", func(surf platform.Surface) error {
		size = s.dev.SurfaceInfo(surf).Size
		if s.presentOnAcquire {
			if err := s.dev.Present(s.ctx, surf); err != nil {
				return surfaceErr("present", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t, err := s.backend.BackBuffer(size)
	if err != nil {
		return nil, &Error{Kind: KindFramebuffer, Op: "back buffer", Err: err}
	}
	return t, nil
}

// SwapBuffers presents the back buffer of the surface.
func (s *Session) SwapBuffers() error {
	return s.withSurface("swap buffers", func(surf platform.Surface) error {
		if err := s.dev.Present(s.ctx, surf); err != nil {
			return surfaceErr("present", err)
		}
		return nil
	})
}

// SetSize resizes the surface to size pixels.
func (s *Session) SetSize(size image.Point) error {
	if s.dev == nil {
		return surfaceErr("resize", ErrReleased)
	}
	if size.X <= 0 || size.Y <= 0 {
		return surfaceErr("resize", fmt.Errorf("invalid size %v", size))
	}
	return s.withSurface("resize", func(surf platform.Surface) error {
		if err := s.dev.ResizeSurface(s.ctx, surf, size); err != nil {
			return surfaceErr("resize", err)
		}
		s.log.Debug("surface resized", "width", size.X, "height", size.Y)
		return nil
	})
}

// Size returns the size of the bound surface.
func (s *Session) Size() (image.Point, error) {
	if s.dev == nil {
		return image.Point{}, surfaceErr("surface info", ErrReleased)
	}
	if s.detached != nil {
		return s.dev.SurfaceInfo(s.detached).Size, nil
	}
	info, err := s.dev.ContextSurfaceInfo(s.ctx)
	if err != nil {
		return image.Point{}, surfaceErr("surface info", err)
	}
	if info == nil {
		return image.Point{}, surfaceErr("surface info", ErrNoSurface)
	}
	return info.Size, nil
}

// Release destroys the context and its surface and closes the device.
// Failures are logged. Release is a no-op for a released Session.
func (s *Session) Release() {
	if s.dev == nil {
		return
	}
	dev, ctx, surf := s.dev, s.ctx, s.detached
	s.dev, s.ctx, s.detached, s.backend = nil, nil, nil, nil
	if surf != nil {
		if err := dev.DestroySurface(ctx, surf); err != nil {
			s.log.Warn("destroy surface failed", "err", err)
		}
	}
	if err := dev.DestroyContext(ctx); err != nil {
		s.log.Warn("destroy context failed", "err", err)
	}
	closeDevice(s.log, dev)
}

func closeDevice(log *slog.Logger, dev platform.Device) {
	if err := dev.Close(); err != nil {
		log.Warn("close device failed", "err", err)
	}
}
