// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd || windows

// Package egl implements platform.Provider with EGL window surfaces.
//
// Unbinding a surface keeps its context current without a surface,
// which requires EGL_KHR_surfaceless_context; without it the context
// is released from the thread until the surface is bound again.
package egl

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"unsafe"

	"gioui.org/glsurface/gpu/gl"
	"gioui.org/glsurface/internal/glimpl"
	"gioui.org/glsurface/platform"
)

// Provider is the EGL platform.Provider.
type Provider struct{}

type connection struct {
	disp _EGLDisplay
}

type nativeWidget struct {
	win NativeWindowType
}

type adapter struct {
	disp _EGLDisplay
}

type device struct {
	disp        _EGLDisplay
	major       _EGLint
	minor       _EGLint
	surfaceless bool
	closed      bool
}

type contextDescriptor struct {
	config _EGLConfig
	attrs  platform.ContextAttributes
}

type eglContext struct {
	ctx    _EGLContext
	config _EGLConfig
	bound  *surface
}

type surface struct {
	surf   _EGLSurface
	size   image.Point
	access platform.SurfaceAccess
	ctx    *eglContext
}

var (
	nilEGLDisplay _EGLDisplay
	nilEGLSurface _EGLSurface
	nilEGLContext _EGLContext
	nilEGLConfig  _EGLConfig
)

const (
	_EGL_ALPHA_SIZE                               = 0x3021
	_EGL_BLUE_SIZE                                = 0x3022
	_EGL_CONFIG_CAVEAT                            = 0x3027
	_EGL_CONTEXT_MAJOR_VERSION                    = 0x3098
	_EGL_CONTEXT_MINOR_VERSION                    = 0x30fb
	_EGL_CONTEXT_OPENGL_COMPATIBILITY_PROFILE_BIT = 0x2
	_EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT          = 0x1
	_EGL_CONTEXT_OPENGL_PROFILE_MASK              = 0x30fd
	_EGL_DEPTH_SIZE                               = 0x3025
	_EGL_EXTENSIONS                               = 0x3055
	_EGL_GREEN_SIZE                               = 0x3023
	_EGL_HEIGHT                                   = 0x3056
	_EGL_NONE                                     = 0x3038
	_EGL_OPENGL_API                               = 0x30a2
	_EGL_OPENGL_BIT                               = 0x8
	_EGL_RED_SIZE                                 = 0x3024
	_EGL_RENDERABLE_TYPE                          = 0x3040
	_EGL_STENCIL_SIZE                             = 0x3026
	_EGL_SURFACE_TYPE                             = 0x3033
	_EGL_WIDTH                                    = 0x3057
	_EGL_WINDOW_BIT                               = 0x4
)

var _ platform.Provider = Provider{}

func (Provider) Connect(w platform.Window) (platform.Connection, error) {
	if err := loadEGL(); err != nil {
		return nil, err
	}
	disp := eglGetDisplay(nativeDisplay(w.NativeDisplay()))
	if disp == nilEGLDisplay {
		return nil, fmt.Errorf("eglGetDisplay failed: 0x%x", eglGetError())
	}
	return &connection{disp: disp}, nil
}

// Loader implements platform.FunctionLoader.
func (Provider) Loader() gl.Loader {
	return glimpl.Load
}

func (c *connection) NewNativeWidget(w platform.Window) (platform.NativeWidget, error) {
	win := w.NativeWindow()
	if win == 0 {
		return nil, errors.New("egl: window has no native handle")
	}
	return &nativeWidget{win: NativeWindowType(win)}, nil
}

// NewHardwareAdapter returns the display's own driver; EGL exposes no
// adapter selection.
func (c *connection) NewHardwareAdapter() (platform.Adapter, error) {
	return &adapter{disp: c.disp}, nil
}

func (c *connection) NewDevice(a platform.Adapter) (platform.Device, error) {
	ad, ok := a.(*adapter)
	if !ok || ad.disp != c.disp {
		return nil, fmt.Errorf("egl: foreign adapter %T", a)
	}
	major, minor, ok := eglInitialize(ad.disp)
	if !ok {
		return nil, fmt.Errorf("eglInitialize failed: 0x%x", eglGetError())
	}
	exts := strings.Split(eglQueryString(ad.disp, _EGL_EXTENSIONS), " ")
	return &device{
		disp:        ad.disp,
		major:       major,
		minor:       minor,
		surfaceless: hasExtension(exts, "EGL_KHR_surfaceless_context"),
	}, nil
}

func hasExtension(exts []string, ext string) bool {
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func (d *device) context(ctx platform.Context) (*eglContext, error) {
	if d.closed {
		return nil, errors.New("egl: device closed")
	}
	c, ok := ctx.(*eglContext)
	if !ok || c == nil || c.ctx == nilEGLContext {
		return nil, fmt.Errorf("egl: invalid context %T", ctx)
	}
	return c, nil
}

func (d *device) surface(s platform.Surface) (*surface, error) {
	surf, ok := s.(*surface)
	if !ok || surf == nil || surf.surf == nilEGLSurface {
		return nil, fmt.Errorf("egl: invalid surface %T", s)
	}
	return surf, nil
}

func (d *device) NewContextDescriptor(attrs platform.ContextAttributes) (platform.ContextDescriptor, error) {
	if d.closed {
		return nil, errors.New("egl: device closed")
	}
	if !eglBindAPI(_EGL_OPENGL_API) {
		return nil, fmt.Errorf("eglBindAPI(EGL_OPENGL_API) failed: 0x%x", eglGetError())
	}
	attribs := []_EGLint{
		_EGL_RENDERABLE_TYPE, _EGL_OPENGL_BIT,
		_EGL_SURFACE_TYPE, _EGL_WINDOW_BIT,
		_EGL_BLUE_SIZE, 8,
		_EGL_GREEN_SIZE, 8,
		_EGL_RED_SIZE, 8,
		_EGL_CONFIG_CAVEAT, _EGL_NONE,
	}
	if attrs.Flags&platform.ContextAlpha != 0 {
		attribs = append(attribs, _EGL_ALPHA_SIZE, 8)
	}
	if attrs.Flags&platform.ContextDepth != 0 {
		attribs = append(attribs, _EGL_DEPTH_SIZE, 24)
	}
	if attrs.Flags&platform.ContextStencil != 0 {
		attribs = append(attribs, _EGL_STENCIL_SIZE, 8)
	}
	attribs = append(attribs, _EGL_NONE)
	cfg, ok := eglChooseConfig(d.disp, attribs)
	if !ok {
		return nil, fmt.Errorf("eglChooseConfig failed: 0x%x", eglGetError())
	}
	if cfg == nilEGLConfig {
		return nil, errors.New("eglChooseConfig returned 0 configs")
	}
	return &contextDescriptor{config: cfg, attrs: attrs}, nil
}

func (d *device) NewContext(desc platform.ContextDescriptor, share platform.Context) (platform.Context, error) {
	if d.closed {
		return nil, errors.New("egl: device closed")
	}
	cd, ok := desc.(*contextDescriptor)
	if !ok {
		return nil, fmt.Errorf("egl: foreign context descriptor %T", desc)
	}
	shareCtx := nilEGLContext
	if share != nil {
		sc, err := d.context(share)
		if err != nil {
			return nil, err
		}
		shareCtx = sc.ctx
	}
	profile := _EGLint(_EGL_CONTEXT_OPENGL_CORE_PROFILE_BIT)
	if cd.attrs.Flags&platform.ContextCompatibility != 0 {
		profile = _EGL_CONTEXT_OPENGL_COMPATIBILITY_PROFILE_BIT
	}
	ctxAttribs := []_EGLint{
		_EGL_CONTEXT_MAJOR_VERSION, _EGLint(cd.attrs.Version.Major),
		_EGL_CONTEXT_MINOR_VERSION, _EGLint(cd.attrs.Version.Minor),
		_EGL_CONTEXT_OPENGL_PROFILE_MASK, profile,
		_EGL_NONE,
	}
	ctx := eglCreateContext(d.disp, cd.config, shareCtx, ctxAttribs)
	if ctx == nilEGLContext {
		return nil, fmt.Errorf("eglCreateContext (OpenGL %s) failed: 0x%x", cd.attrs.Version, eglGetError())
	}
	return &eglContext{ctx: ctx, config: cd.config}, nil
}

func (d *device) DestroyContext(ctx platform.Context) error {
	c, err := d.context(ctx)
	if err != nil {
		return err
	}
	var errs []error
	eglMakeCurrent(d.disp, nilEGLSurface, nilEGLSurface, nilEGLContext)
	if s := c.bound; s != nil {
		c.bound, s.ctx = nil, nil
		if !eglDestroySurface(d.disp, s.surf) {
			errs = append(errs, fmt.Errorf("eglDestroySurface failed: 0x%x", eglGetError()))
		}
		s.surf = nilEGLSurface
	}
	if !eglDestroyContext(d.disp, c.ctx) {
		errs = append(errs, fmt.Errorf("eglDestroyContext failed: 0x%x", eglGetError()))
	}
	c.ctx = nilEGLContext
	return errors.Join(errs...)
}

func (d *device) MakeCurrent(ctx platform.Context) error {
	c, err := d.context(ctx)
	if err != nil {
		return err
	}
	surf := nilEGLSurface
	if c.bound != nil {
		surf = c.bound.surf
	}
	if !eglMakeCurrent(d.disp, surf, surf, c.ctx) {
		return fmt.Errorf("eglMakeCurrent error 0x%x", eglGetError())
	}
	return nil
}

func (d *device) ProcAddress(ctx platform.Context, name string) unsafe.Pointer {
	if _, err := d.context(ctx); err != nil {
		return nil
	}
	return eglGetProcAddress(name)
}

func (d *device) NewSurface(ctx platform.Context, access platform.SurfaceAccess, typ platform.SurfaceType) (platform.Surface, error) {
	c, err := d.context(ctx)
	if err != nil {
		return nil, err
	}
	w, ok := typ.Widget.(*nativeWidget)
	if !ok {
		return nil, fmt.Errorf("egl: foreign native widget %T", typ.Widget)
	}
	eglSurf := eglCreateWindowSurface(d.disp, c.config, w.win, []_EGLint{_EGL_NONE})
	if eglSurf == nilEGLSurface {
		return nil, fmt.Errorf("eglCreateWindowSurface failed 0x%x", eglGetError())
	}
	width, ok1 := eglQuerySurface(d.disp, eglSurf, _EGL_WIDTH)
	height, ok2 := eglQuerySurface(d.disp, eglSurf, _EGL_HEIGHT)
	if !ok1 || !ok2 {
		err := fmt.Errorf("eglQuerySurface failed 0x%x", eglGetError())
		eglDestroySurface(d.disp, eglSurf)
		return nil, err
	}
	return &surface{
		surf:   eglSurf,
		size:   image.Point{X: int(width), Y: int(height)},
		access: access,
	}, nil
}

func (d *device) DestroySurface(ctx platform.Context, s platform.Surface) error {
	surf, err := d.surface(s)
	if err != nil {
		return err
	}
	if surf.ctx != nil {
		return errors.New("egl: destroying a bound surface")
	}
	if !eglDestroySurface(d.disp, surf.surf) {
		return fmt.Errorf("eglDestroySurface failed: 0x%x", eglGetError())
	}
	surf.surf = nilEGLSurface
	return nil
}

func (d *device) BindSurface(ctx platform.Context, s platform.Surface) error {
	c, err := d.context(ctx)
	if err != nil {
		return err
	}
	surf, err := d.surface(s)
	if err != nil {
		return err
	}
	if c.bound != nil {
		return errors.New("egl: context already has a surface")
	}
	if surf.ctx != nil {
		return errors.New("egl: surface is bound to another context")
	}
	if !eglMakeCurrent(d.disp, surf.surf, surf.surf, c.ctx) {
		return fmt.Errorf("eglMakeCurrent error 0x%x", eglGetError())
	}
	c.bound, surf.ctx = surf, c
	return nil
}

func (d *device) UnbindSurface(ctx platform.Context) (platform.Surface, error) {
	c, err := d.context(ctx)
	if err != nil {
		return nil, err
	}
	surf := c.bound
	if surf == nil {
		return nil, nil
	}
	if err := d.releaseSurface(c); err != nil {
		return nil, err
	}
	c.bound, surf.ctx = nil, nil
	return surf, nil
}

// releaseSurface detaches any surface from the current context of the
// thread.
func (d *device) releaseSurface(c *eglContext) error {
	current := c.ctx
	if !d.surfaceless {
		current = nilEGLContext
	}
	if !eglMakeCurrent(d.disp, nilEGLSurface, nilEGLSurface, current) {
		return fmt.Errorf("eglMakeCurrent error 0x%x", eglGetError())
	}
	return nil
}

// Present swaps the buffers of s. EGL swaps only surfaces current on
// the calling thread, so s is made current for the duration of the
// swap.
func (d *device) Present(ctx platform.Context, s platform.Surface) error {
	c, err := d.context(ctx)
	if err != nil {
		return err
	}
	surf, err := d.surface(s)
	if err != nil {
		return err
	}
	if !eglMakeCurrent(d.disp, surf.surf, surf.surf, c.ctx) {
		return fmt.Errorf("eglMakeCurrent error 0x%x", eglGetError())
	}
	var swapErr error
	if !eglSwapBuffers(d.disp, surf.surf) {
		swapErr = fmt.Errorf("eglSwapBuffers failed (%x)", eglGetError())
	}
	if err := d.releaseSurface(c); err != nil && swapErr == nil {
		swapErr = err
	}
	return swapErr
}

// ResizeSurface records the new size of s. EGL window surfaces follow
// the size of their native window, so size must be the drawable size
// the window system reported for it.
func (d *device) ResizeSurface(ctx platform.Context, s platform.Surface, size image.Point) error {
	if _, err := d.context(ctx); err != nil {
		return err
	}
	surf, err := d.surface(s)
	if err != nil {
		return err
	}
	if surf.ctx != nil {
		return errors.New("egl: resizing a bound surface")
	}
	if size.X <= 0 || size.Y <= 0 {
		return fmt.Errorf("egl: invalid surface size %v", size)
	}
	surf.size = size
	return nil
}

func (d *device) SurfaceInfo(s platform.Surface) platform.SurfaceInfo {
	surf, err := d.surface(s)
	if err != nil {
		return platform.SurfaceInfo{}
	}
	return platform.SurfaceInfo{Size: surf.size, Access: surf.access}
}

func (d *device) ContextSurfaceInfo(ctx platform.Context) (*platform.SurfaceInfo, error) {
	c, err := d.context(ctx)
	if err != nil {
		return nil, err
	}
	if c.bound == nil {
		return nil, nil
	}
	info := d.SurfaceInfo(c.bound)
	return &info, nil
}

func (d *device) Close() error {
	if d.closed {
		return errors.New("egl: device closed")
	}
	d.closed = true
	ok := eglTerminate(d.disp)
	eglReleaseThread()
	if !ok {
		return fmt.Errorf("eglTerminate failed: 0x%x", eglGetError())
	}
	return nil
}
