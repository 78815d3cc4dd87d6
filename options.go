// SPDX-License-Identifier: Unlicense OR MIT

package glsurface

import (
	"log/slog"

	"gioui.org/glsurface/gpu/gl"
	"gioui.org/glsurface/platform"
)

// Option configures New.
type Option func(*options)

type options struct {
	api    gl.API
	shader gl.ShaderVersion
	access *platform.SurfaceAccess
	loader gl.Loader
	logger *slog.Logger
}

// WithAPI selects the GL backend. The default is gl.Core33.
func WithAPI(api gl.API) Option {
	return func(o *options) {
		o.api = api
	}
}

// WithShaderVersion selects the gl.Compat backend with shaders written
// for v.
func WithShaderVersion(v gl.ShaderVersion) Option {
	return func(o *options) {
		o.api = gl.Compat
		o.shader = v
	}
}

// WithSurfaceAccess overrides the surface access mode. By default
// gl.Core33 surfaces are platform.GPUOnly and gl.Compat surfaces are
// platform.GPUCPU, because only Compat reads pixels back.
func WithSurfaceAccess(a platform.SurfaceAccess) Option {
	return func(o *options) {
		o.access = &a
	}
}

// WithLoader sets the loader of GL functions. By default the loader of
// the provider is used, if it implements platform.FunctionLoader.
func WithLoader(l gl.Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithLogger sets the logger of the session. The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(p platform.Provider, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.loader == nil {
		if fl, ok := p.(platform.FunctionLoader); ok {
			o.loader = fl.Loader()
		}
	}
	return o
}

func (o *options) surfaceAccess() platform.SurfaceAccess {
	switch {
	case o.access != nil:
		return *o.access
	case o.api == gl.Compat:
		return platform.GPUCPU
	default:
		return platform.GPUOnly
	}
}
