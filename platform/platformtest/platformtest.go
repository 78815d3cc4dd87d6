// SPDX-License-Identifier: Unlicense OR MIT

// Package platformtest implements an in-memory platform.Provider that
// counts calls, tracks live objects and injects failures.
package platformtest

import (
	"errors"
	"fmt"
	"image"
	"unsafe"

	"gioui.org/glsurface/gpu/gl"
	"gioui.org/glsurface/gpu/gl/gltest"
	"gioui.org/glsurface/platform"
)

// Call names a provider operation.
type Call string

const (
	Connect              Call = "Connect"
	NewNativeWidget      Call = "NewNativeWidget"
	NewHardwareAdapter   Call = "NewHardwareAdapter"
	NewDevice            Call = "NewDevice"
	NewContextDescriptor Call = "NewContextDescriptor"
	NewContext           Call = "NewContext"
	DestroyContext       Call = "DestroyContext"
	MakeCurrent          Call = "MakeCurrent"
	ProcAddress          Call = "ProcAddress"
	NewSurface           Call = "NewSurface"
	DestroySurface       Call = "DestroySurface"
	BindSurface          Call = "BindSurface"
	UnbindSurface        Call = "UnbindSurface"
	Present              Call = "Present"
	ResizeSurface        Call = "ResizeSurface"
	ContextSurfaceInfo   Call = "ContextSurfaceInfo"
	CloseDevice          Call = "CloseDevice"
)

// Provider is a fake platform.Provider. The zero value is not usable;
// use New.
type Provider struct {
	// SurfaceSize is the size of new surfaces.
	SurfaceSize image.Point
	// GL is returned by the Loader.
	GL *gltest.Functions
	// LoseSurface makes UnbindSurface succeed without returning a
	// surface.
	LoseSurface bool

	calls    map[Call]int
	failures map[Call]failure
	log      []Call

	devices  map[*Device]bool
	contexts map[*Context]bool
	surfaces map[*Surface]bool

	// Attributes and Access record the last requested values.
	Attributes platform.ContextAttributes
	Access     platform.SurfaceAccess
	Share      platform.Context
}

type failure struct {
	// nth is the 1-based call that fails, or 0 for every call.
	nth int
	err error
}

type Window struct{}

type Connection struct {
	p *Provider
}

type Adapter struct{}

type NativeWidget struct {
	Window platform.Window
}

type Device struct {
	p      *Provider
	closed bool
}

type ContextDescriptor struct {
	Attributes platform.ContextAttributes
}

type Context struct {
	ID        int
	bound     *Surface
	destroyed bool
}

type Surface struct {
	ID        int
	Size      image.Point
	Access    platform.SurfaceAccess
	Widget    platform.NativeWidget
	Presents  int
	context   *Context
	destroyed bool
}

var _ platform.Provider = (*Provider)(nil)

func (Window) NativeDisplay() unsafe.Pointer { return nil }

func (Window) NativeWindow() uintptr { return 1 }

// New returns a Provider creating surfaces of the given size and
// loading an OpenGL 3.3 core gltest.Functions.
func New(size image.Point) *Provider {
	return &Provider{
		SurfaceSize: size,
		GL:          gltest.New(),
		calls:       make(map[Call]int),
		failures:    make(map[Call]failure),
		devices:     make(map[*Device]bool),
		contexts:    make(map[*Context]bool),
		surfaces:    make(map[*Surface]bool),
	}
}

// Fail makes every subsequent call to c fail with err.
func (p *Provider) Fail(c Call, err error) {
	p.failures[c] = failure{err: err}
}

// FailNth makes the nth call to c fail with err, counting calls made
// so far.
func (p *Provider) FailNth(c Call, nth int, err error) {
	p.failures[c] = failure{nth: nth, err: err}
}

// Heal removes every injected failure.
func (p *Provider) Heal() {
	p.failures = make(map[Call]failure)
}

// Calls returns the number of calls made to c.
func (p *Provider) Calls(c Call) int {
	return p.calls[c]
}

// Log returns every call made, in order.
func (p *Provider) Log() []Call {
	return append([]Call(nil), p.log...)
}

// ResetLog clears the call log but not the counters.
func (p *Provider) ResetLog() {
	p.log = nil
}

// Live reports the number of devices, contexts and surfaces created
// but not yet released.
func (p *Provider) Live() (devices, contexts, surfaces int) {
	return len(p.devices), len(p.contexts), len(p.surfaces)
}

// Bound returns the surface bound to ctx, or nil.
func (p *Provider) Bound(ctx platform.Context) *Surface {
	c, ok := ctx.(*Context)
	if !ok {
		return nil
	}
	return c.bound
}

// Contexts returns the live contexts.
func (p *Provider) Contexts() []*Context {
	var ctxs []*Context
	for c := range p.contexts {
		ctxs = append(ctxs, c)
	}
	return ctxs
}

// Loader implements platform.FunctionLoader.
func (p *Provider) Loader() gl.Loader {
	return p.GL.Loader(nil)
}

func (p *Provider) call(c Call) error {
	p.calls[c]++
	p.log = append(p.log, c)
	f, ok := p.failures[c]
	if !ok || f.nth != 0 && f.nth != p.calls[c] {
		return nil
	}
	return fmt.Errorf("platformtest: %s: %w", c, f.err)
}

func (p *Provider) Connect(w platform.Window) (platform.Connection, error) {
	if err := p.call(Connect); err != nil {
		return nil, err
	}
	if w == nil {
		return nil, errors.New("platformtest: nil window")
	}
	return &Connection{p: p}, nil
}

func (c *Connection) NewNativeWidget(w platform.Window) (platform.NativeWidget, error) {
	if err := c.p.call(NewNativeWidget); err != nil {
		return nil, err
	}
	return &NativeWidget{Window: w}, nil
}

func (c *Connection) NewHardwareAdapter() (platform.Adapter, error) {
	if err := c.p.call(NewHardwareAdapter); err != nil {
		return nil, err
	}
	return &Adapter{}, nil
}

func (c *Connection) NewDevice(a platform.Adapter) (platform.Device, error) {
	if err := c.p.call(NewDevice); err != nil {
		return nil, err
	}
	if _, ok := a.(*Adapter); !ok {
		return nil, fmt.Errorf("platformtest: foreign adapter %T", a)
	}
	d := &Device{p: c.p}
	c.p.devices[d] = true
	return d, nil
}

func (d *Device) check() error {
	if d.closed {
		return errors.New("platformtest: device closed")
	}
	return nil
}

func (d *Device) context(ctx platform.Context) (*Context, error) {
	if err := d.check(); err != nil {
		return nil, err
	}
	c, ok := ctx.(*Context)
	if !ok || c.destroyed || !d.p.contexts[c] {
		return nil, fmt.Errorf("platformtest: invalid context %v", ctx)
	}
	return c, nil
}

func (d *Device) surface(s platform.Surface) (*Surface, error) {
	surf, ok := s.(*Surface)
	if !ok || surf.destroyed || !d.p.surfaces[surf] {
		return nil, fmt.Errorf("platformtest: invalid surface %v", s)
	}
	return surf, nil
}

func (d *Device) NewContextDescriptor(attrs platform.ContextAttributes) (platform.ContextDescriptor, error) {
	if err := d.p.call(NewContextDescriptor); err != nil {
		return nil, err
	}
	if err := d.check(); err != nil {
		return nil, err
	}
	d.p.Attributes = attrs
	return &ContextDescriptor{Attributes: attrs}, nil
}

func (d *Device) NewContext(desc platform.ContextDescriptor, share platform.Context) (platform.Context, error) {
	if err := d.p.call(NewContext); err != nil {
		return nil, err
	}
	if err := d.check(); err != nil {
		return nil, err
	}
	if _, ok := desc.(*ContextDescriptor); !ok {
		return nil, fmt.Errorf("platformtest: foreign descriptor %T", desc)
	}
	d.p.Share = share
	c := &Context{ID: d.p.calls[NewContext]}
	d.p.contexts[c] = true
	return c, nil
}

func (d *Device) DestroyContext(ctx platform.Context) error {
	if err := d.p.call(DestroyContext); err != nil {
		return err
	}
	c, err := d.context(ctx)
	if err != nil {
		return err
	}
	if s := c.bound; s != nil {
		s.destroyed = true
		delete(d.p.surfaces, s)
		c.bound = nil
	}
	c.destroyed = true
	delete(d.p.contexts, c)
	return nil
}

func (d *Device) MakeCurrent(ctx platform.Context) error {
	if err := d.p.call(MakeCurrent); err != nil {
		return err
	}
	_, err := d.context(ctx)
	return err
}

func (d *Device) ProcAddress(ctx platform.Context, name string) unsafe.Pointer {
	d.p.calls[ProcAddress]++
	if _, err := d.context(ctx); err != nil {
		return nil
	}
	// Any non-nil address will do; the fake loader never calls it.
	return unsafe.Pointer(d)
}

func (d *Device) NewSurface(ctx platform.Context, access platform.SurfaceAccess, typ platform.SurfaceType) (platform.Surface, error) {
	if err := d.p.call(NewSurface); err != nil {
		return nil, err
	}
	if _, err := d.context(ctx); err != nil {
		return nil, err
	}
	if typ.Widget == nil {
		return nil, errors.New("platformtest: surface without a native widget")
	}
	d.p.Access = access
	s := &Surface{
		ID:     d.p.calls[NewSurface],
		Size:   d.p.SurfaceSize,
		Access: access,
		Widget: typ.Widget,
	}
	d.p.surfaces[s] = true
	return s, nil
}

func (d *Device) DestroySurface(ctx platform.Context, s platform.Surface) error {
	if err := d.p.call(DestroySurface); err != nil {
		return err
	}
	surf, err := d.surface(s)
	if err != nil {
		return err
	}
	if surf.context != nil {
		return errors.New("platformtest: destroying a bound surface")
	}
	surf.destroyed = true
	delete(d.p.surfaces, surf)
	return nil
}

func (d *Device) BindSurface(ctx platform.Context, s platform.Surface) error {
	if err := d.p.call(BindSurface); err != nil {
		return err
	}
	c, err := d.context(ctx)
	if err != nil {
		return err
	}
	surf, err := d.surface(s)
	if err != nil {
		return err
	}
	if c.bound != nil {
		return errors.New("platformtest: context already has a surface")
	}
	if surf.context != nil {
		return errors.New("platformtest: surface bound to another context")
	}
	c.bound, surf.context = surf, c
	return nil
}

func (d *Device) UnbindSurface(ctx platform.Context) (platform.Surface, error) {
	if err := d.p.call(UnbindSurface); err != nil {
		return nil, err
	}
	c, err := d.context(ctx)
	if err != nil {
		return nil, err
	}
	s := c.bound
	if s == nil {
		return nil, nil
	}
	c.bound, s.context = nil, nil
	if d.p.LoseSurface {
		// The surface is gone for good.
		s.destroyed = true
		delete(d.p.surfaces, s)
		return nil, nil
	}
	return s, nil
}

func (d *Device) Present(ctx platform.Context, s platform.Surface) error {
	if err := d.p.call(Present); err != nil {
		return err
	}
	if _, err := d.context(ctx); err != nil {
		return err
	}
	surf, err := d.surface(s)
	if err != nil {
		return err
	}
	if surf.context != nil {
		return errors.New("platformtest: presenting a bound surface")
	}
	surf.Presents++
	return nil
}

func (d *Device) ResizeSurface(ctx platform.Context, s platform.Surface, size image.Point) error {
	if err := d.p.call(ResizeSurface); err != nil {
		return err
	}
	if _, err := d.context(ctx); err != nil {
		return err
	}
	surf, err := d.surface(s)
	if err != nil {
		return err
	}
	if surf.context != nil {
		return errors.New("platformtest: resizing a bound surface")
	}
	surf.Size = size
	return nil
}

func (d *Device) SurfaceInfo(s platform.Surface) platform.SurfaceInfo {
	surf, err := d.surface(s)
	if err != nil {
		return platform.SurfaceInfo{}
	}
	return platform.SurfaceInfo{Size: surf.Size, Access: surf.Access}
}

func (d *Device) ContextSurfaceInfo(ctx platform.Context) (*platform.SurfaceInfo, error) {
	if err := d.p.call(ContextSurfaceInfo); err != nil {
		return nil, err
	}
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

func (d *Device) Close() error {
	if err := d.p.call(CloseDevice); err != nil {
		return err
	}
	if err := d.check(); err != nil {
		return err
	}
	for c := range d.p.contexts {
		if !c.destroyed {
			return errors.New("platformtest: closing a device with live contexts")
		}
	}
	d.closed = true
	delete(d.p.devices, d)
	return nil
}
