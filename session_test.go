// SPDX-License-Identifier: Unlicense OR MIT

package glsurface_test

import (
	"bytes"
	"errors"
	"image"
	"io"
	"log/slog"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/glsurface"
	"gioui.org/glsurface/gpu/gl"
	"gioui.org/glsurface/gpu/gl/gltest"
	"gioui.org/glsurface/platform"
	"gioui.org/glsurface/platform/platformtest"
)

var errBoom = errors.New("boom")

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSession(t *testing.T, p *platformtest.Provider, opts ...glsurface.Option) *glsurface.Session {
	t.Helper()
	opts = append([]glsurface.Option{glsurface.WithLogger(discard())}, opts...)
	s, err := glsurface.New(p, platformtest.Window{}, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

func liveContext(t *testing.T, p *platformtest.Provider) platform.Context {
	t.Helper()
	ctxs := p.Contexts()
	require.Len(t, ctxs, 1)
	return ctxs[0]
}

func requireBound(t *testing.T, p *platformtest.Provider) {
	t.Helper()
	require.NotNil(t, p.Bound(liveContext(t, p)), "no surface bound to the context")
}

func TestScenario(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s := newSession(t, p)
	requireBound(t, p)

	target, err := s.BackBuffer()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(800, 600), target.Size())
	requireBound(t, p)

	require.NoError(t, s.SetSize(image.Pt(1024, 768)))
	requireBound(t, p)
	target, err = s.BackBuffer()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1024, 768), target.Size())

	require.NoError(t, s.SwapBuffers())
	requireBound(t, p)
	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1024, 768), size)
}

func TestResize(t *testing.T) {
	p := platformtest.New(image.Pt(640, 480))
	s := newSession(t, p)
	for _, sz := range []image.Point{{1, 1}, {1920, 1080}, {3, 4000}, {640, 480}} {
		require.NoError(t, s.SetSize(sz))
		target, err := s.BackBuffer()
		require.NoError(t, err)
		assert.Equal(t, sz, target.Size())
		requireBound(t, p)
	}
}

func TestSwapKeepsSize(t *testing.T) {
	p := platformtest.New(image.Pt(320, 200))
	s := newSession(t, p)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SwapBuffers())
		size, err := s.Size()
		require.NoError(t, err)
		assert.Equal(t, image.Pt(320, 200), size)
	}
	assert.Equal(t, 3, p.Bound(liveContext(t, p)).Presents)
}

func TestCallOrder(t *testing.T) {
	tests := []struct {
		name string
		opts []glsurface.Option
		op   func(s *glsurface.Session) error
		want []platformtest.Call
	}{
		{
			name: "swap",
			op:   (*glsurface.Session).SwapBuffers,
			want: []platformtest.Call{platformtest.UnbindSurface, platformtest.Present, platformtest.BindSurface},
		},
		{
			name: "resize",
			op: func(s *glsurface.Session) error {
				return s.SetSize(image.Pt(10, 10))
			},
			want: []platformtest.Call{platformtest.UnbindSurface, platformtest.ResizeSurface, platformtest.BindSurface},
		},
		{
			name: "back buffer core33",
			op: func(s *glsurface.Session) error {
				_, err := s.BackBuffer()
				return err
			},
			want: []platformtest.Call{platformtest.UnbindSurface, platformtest.Present, platformtest.BindSurface},
		},
		{
			name: "back buffer compat",
			opts: []glsurface.Option{glsurface.WithShaderVersion(gl.GLSL330)},
			op: func(s *glsurface.Session) error {
				_, err := s.BackBuffer()
				return err
			},
			want: []platformtest.Call{platformtest.UnbindSurface, platformtest.BindSurface},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := platformtest.New(image.Pt(100, 100))
			s := newSession(t, p, test.opts...)
			p.ResetLog()
			require.NoError(t, test.op(s))
			assert.Equal(t, test.want, p.Log())
		})
	}
}

func TestConstructionOrder(t *testing.T) {
	p := platformtest.New(image.Pt(100, 100))
	newSession(t, p)
	assert.Equal(t, []platformtest.Call{
		platformtest.Connect,
		platformtest.NewNativeWidget,
		platformtest.NewHardwareAdapter,
		platformtest.NewDevice,
		platformtest.NewContextDescriptor,
		platformtest.NewContext,
		platformtest.NewSurface,
		platformtest.BindSurface,
		platformtest.MakeCurrent,
	}, p.Log())
	assert.Equal(t, platform.ContextAttributes{
		Version: platform.GLVersion{Major: 3, Minor: 3},
		Flags:   platform.ContextAlpha | platform.ContextDepth | platform.ContextStencil,
	}, p.Attributes)
	assert.Nil(t, p.Share)
	assert.Equal(t, len(gltest.Names), p.Calls(platformtest.ProcAddress))
}

func TestCompatProfile(t *testing.T) {
	p := platformtest.New(image.Pt(100, 100))
	newSession(t, p, glsurface.WithAPI(gl.Compat))
	assert.Equal(t, platform.ContextAttributes{
		Version: platform.GLVersion{Major: 3, Minor: 3},
		Flags:   platform.ContextAlpha | platform.ContextDepth | platform.ContextStencil | platform.ContextCompatibility,
	}, p.Attributes)
}

func TestConstructionAtomicity(t *testing.T) {
	calls := []platformtest.Call{
		platformtest.Connect,
		platformtest.NewNativeWidget,
		platformtest.NewHardwareAdapter,
		platformtest.NewDevice,
		platformtest.NewContextDescriptor,
		platformtest.NewContext,
		platformtest.NewSurface,
		platformtest.BindSurface,
		platformtest.MakeCurrent,
	}
	for _, c := range calls {
		t.Run(string(c), func(t *testing.T) {
			p := platformtest.New(image.Pt(100, 100))
			p.Fail(c, errBoom)
			s, err := glsurface.New(p, platformtest.Window{}, glsurface.WithLogger(discard()))
			require.Nil(t, s)
			require.ErrorIs(t, err, glsurface.ErrSurface)
			require.ErrorIs(t, err, errBoom)
			devices, contexts, surfaces := p.Live()
			assert.Zero(t, devices, "leaked devices")
			assert.Zero(t, contexts, "leaked contexts")
			assert.Zero(t, surfaces, "leaked surfaces")
		})
	}
}

func TestGLInitFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(p *platformtest.Provider) []glsurface.Option
	}{
		{"old context", func(p *platformtest.Provider) []glsurface.Option {
			p.GL.Version = "2.1 Mesa"
			return nil
		}},
		{"state query", func(p *platformtest.Provider) []glsurface.Option {
			p.GL.Errors = []gl.Enum{gl.INVALID_OPERATION}
			return nil
		}},
		{"loader", func(p *platformtest.Provider) []glsurface.Option {
			return []glsurface.Option{glsurface.WithLoader(func(func(string) unsafe.Pointer) (gl.Functions, error) {
				return nil, errBoom
			})}
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := platformtest.New(image.Pt(100, 100))
			opts := append(test.setup(p), glsurface.WithLogger(discard()))
			s, err := glsurface.New(p, platformtest.Window{}, opts...)
			require.Nil(t, s)
			require.ErrorIs(t, err, glsurface.ErrGL)
			assert.NotErrorIs(t, err, glsurface.ErrSurface)
			devices, contexts, surfaces := p.Live()
			assert.Zero(t, devices+contexts+surfaces, "leaked provider objects")
		})
	}
}

type providerWithoutLoader struct {
	platform.Provider
}

func TestNoLoader(t *testing.T) {
	p := platformtest.New(image.Pt(100, 100))
	_, err := glsurface.New(providerWithoutLoader{p}, platformtest.Window{}, glsurface.WithLogger(discard()))
	require.ErrorIs(t, err, glsurface.ErrGL)
	devices, contexts, surfaces := p.Live()
	assert.Zero(t, devices+contexts+surfaces)
}

func TestLoaderLookup(t *testing.T) {
	p := platformtest.New(image.Pt(100, 100))
	var missing []string
	newSession(t, p, glsurface.WithLoader(p.GL.Loader(&missing)))
	assert.Empty(t, missing)
}

func TestPresentFailure(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s := newSession(t, p)
	p.Fail(platformtest.Present, errBoom)

	err := s.SwapBuffers()
	require.ErrorIs(t, err, glsurface.ErrSurface)
	require.ErrorIs(t, err, errBoom)
	var serr *glsurface.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "present", serr.Op)
	// The surface is rebound after the failed present.
	requireBound(t, p)

	_, err = s.BackBuffer()
	require.ErrorIs(t, err, errBoom)
	requireBound(t, p)

	p.Heal()
	require.NoError(t, s.SwapBuffers())
}

func TestOperationFailuresKeepBinding(t *testing.T) {
	tests := []struct {
		call platformtest.Call
		op   func(s *glsurface.Session) error
	}{
		{platformtest.UnbindSurface, (*glsurface.Session).SwapBuffers},
		{platformtest.ResizeSurface, func(s *glsurface.Session) error {
			return s.SetSize(image.Pt(10, 20))
		}},
		{platformtest.UnbindSurface, func(s *glsurface.Session) error {
			_, err := s.BackBuffer()
			return err
		}},
	}
	for _, test := range tests {
		t.Run(string(test.call), func(t *testing.T) {
			p := platformtest.New(image.Pt(100, 100))
			s := newSession(t, p)
			p.Fail(test.call, errBoom)
			err := test.op(s)
			require.ErrorIs(t, err, glsurface.ErrSurface)
			require.ErrorIs(t, err, errBoom)
			requireBound(t, p)
			size, err := s.Size()
			require.NoError(t, err)
			assert.Equal(t, image.Pt(100, 100), size)
		})
	}
}

func TestRebindFailure(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s := newSession(t, p)
	// The first bind happened during construction.
	p.FailNth(platformtest.BindSurface, 2, errBoom)

	err := s.SwapBuffers()
	require.ErrorIs(t, err, glsurface.ErrSurface)
	require.ErrorIs(t, err, errBoom)
	assert.Nil(t, p.Bound(liveContext(t, p)))

	// The session kept the surface.
	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(800, 600), size)
	_, _, surfaces := p.Live()
	assert.Equal(t, 1, surfaces)

	unbinds := p.Calls(platformtest.UnbindSurface)
	require.NoError(t, s.SwapBuffers())
	assert.Equal(t, unbinds, p.Calls(platformtest.UnbindSurface), "unbound a detached surface")
	requireBound(t, p)
}

func TestRebindFailureKeepsOperationError(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s := newSession(t, p)
	errBind := errors.New("bind failed")
	p.Fail(platformtest.Present, errBoom)
	p.FailNth(platformtest.BindSurface, 2, errBind)

	err := s.SwapBuffers()
	require.ErrorIs(t, err, errBoom)
	assert.NotErrorIs(t, err, errBind)
}

func TestReleaseDetachedSurface(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s, err := glsurface.New(p, platformtest.Window{}, glsurface.WithLogger(discard()))
	require.NoError(t, err)
	p.FailNth(platformtest.BindSurface, 2, errBoom)
	require.Error(t, s.SwapBuffers())

	s.Release()
	devices, contexts, surfaces := p.Live()
	assert.Zero(t, devices+contexts+surfaces)
}

func TestLostSurface(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s := newSession(t, p)
	p.LoseSurface = true

	err := s.SwapBuffers()
	require.ErrorIs(t, err, glsurface.ErrSurface)
	require.ErrorIs(t, err, glsurface.ErrNoSurface)
	_, err = s.BackBuffer()
	require.ErrorIs(t, err, glsurface.ErrNoSurface)
	_, err = s.Size()
	require.ErrorIs(t, err, glsurface.ErrNoSurface)
}

func TestSetSizeInvalid(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s := newSession(t, p)
	for _, sz := range []image.Point{{0, 10}, {10, 0}, {-1, -1}} {
		require.ErrorIs(t, s.SetSize(sz), glsurface.ErrSurface)
	}
	assert.Zero(t, p.Calls(platformtest.ResizeSurface))
}

func TestSetSizeAfterRelease(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s, err := glsurface.New(p, platformtest.Window{}, glsurface.WithLogger(discard()))
	require.NoError(t, err)
	s.Release()
	for _, sz := range []image.Point{{}, {-1, 10}, {10, 10}} {
		require.ErrorIs(t, s.SetSize(sz), glsurface.ErrReleased, "size %v", sz)
	}
}

func TestFramebufferFailure(t *testing.T) {
	p := platformtest.New(image.Pt(800, 600))
	s := newSession(t, p)
	p.GL.FramebufferStatus = 0x8219

	_, err := s.BackBuffer()
	require.ErrorIs(t, err, glsurface.ErrFramebuffer)
	var ferr *gl.FramebufferError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, image.Pt(800, 600), ferr.Size)
	requireBound(t, p)
}

func TestSurfaceAccess(t *testing.T) {
	tests := []struct {
		name string
		opts []glsurface.Option
		want platform.SurfaceAccess
	}{
		{"core33", nil, platform.GPUOnly},
		{"compat", []glsurface.Option{glsurface.WithAPI(gl.Compat)}, platform.GPUCPU},
		{"shader version", []glsurface.Option{glsurface.WithShaderVersion(gl.GLSL150)}, platform.GPUCPU},
		{"explicit", []glsurface.Option{glsurface.WithSurfaceAccess(platform.GPUCPUWriteCombined)}, platform.GPUCPUWriteCombined},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := platformtest.New(image.Pt(100, 100))
			s := newSession(t, p, test.opts...)
			assert.Equal(t, test.want, p.Access)
			assert.Equal(t, test.want, s.SurfaceAccess())
		})
	}
}

func TestReadPixelsFollowsAccess(t *testing.T) {
	tests := []struct {
		name string
		opts []glsurface.Option
		ok   bool
	}{
		{"core33", nil, false},
		{"core33 readable", []glsurface.Option{glsurface.WithSurfaceAccess(platform.GPUCPU)}, true},
		{"core33 write combined", []glsurface.Option{glsurface.WithSurfaceAccess(platform.GPUCPUWriteCombined)}, true},
		{"compat", []glsurface.Option{glsurface.WithAPI(gl.Compat)}, true},
		{"compat gpu only", []glsurface.Option{glsurface.WithAPI(gl.Compat), glsurface.WithSurfaceAccess(platform.GPUOnly)}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sz := image.Pt(2, 2)
			p := platformtest.New(sz)
			s := newSession(t, p, test.opts...)
			p.GL.Size = sz
			p.GL.Pixels = make([]byte, sz.X*sz.Y*4)
			assert.Equal(t, test.ok, s.Backend().Caps().ReadPixels)
			target, err := s.BackBuffer()
			require.NoError(t, err)
			err = target.ReadPixels(image.NewRGBA(image.Rectangle{Max: sz}))
			if test.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, gl.ErrNoReadPixels)
			}
		})
	}
}

func TestShaderVersion(t *testing.T) {
	p := platformtest.New(image.Pt(100, 100))
	p.GL.GLSL = "4.60"
	s := newSession(t, p, glsurface.WithShaderVersion(gl.GLSL450))
	assert.Equal(t, gl.Compat, s.Backend().API())
	assert.Equal(t, gl.GLSL450, s.Backend().ShaderVersion())
}

func TestReleaseOnce(t *testing.T) {
	p := platformtest.New(image.Pt(100, 100))
	s, err := glsurface.New(p, platformtest.Window{}, glsurface.WithLogger(discard()))
	require.NoError(t, err)

	s.Release()
	s.Release()
	assert.Equal(t, 1, p.Calls(platformtest.DestroyContext))
	assert.Equal(t, 1, p.Calls(platformtest.CloseDevice))
	devices, contexts, surfaces := p.Live()
	assert.Zero(t, devices+contexts+surfaces)

	require.ErrorIs(t, s.SwapBuffers(), glsurface.ErrReleased)
	require.ErrorIs(t, s.SetSize(image.Pt(1, 1)), glsurface.ErrReleased)
	_, err = s.BackBuffer()
	require.ErrorIs(t, err, glsurface.ErrReleased)
	_, err = s.Size()
	require.ErrorIs(t, err, glsurface.ErrReleased)
	assert.Nil(t, s.Backend())
}

func TestReleaseFailureIsLogged(t *testing.T) {
	p := platformtest.New(image.Pt(100, 100))
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	s, err := glsurface.New(p, platformtest.Window{}, glsurface.WithLogger(log))
	require.NoError(t, err)
	p.Fail(platformtest.DestroyContext, errBoom)

	s.Release()
	assert.Contains(t, buf.String(), "destroy context failed")
	assert.Contains(t, buf.String(), "boom")
	s.Release()
	assert.Equal(t, 1, p.Calls(platformtest.DestroyContext))
}

func TestErrorString(t *testing.T) {
	err := &glsurface.Error{Kind: glsurface.KindSurface, Op: "present", Err: errBoom}
	assert.Equal(t, "surface error: present: boom", err.Error())
	err = &glsurface.Error{Kind: glsurface.KindGL, Op: "init backend", Err: errBoom}
	assert.Equal(t, "GL error: init backend: boom", err.Error())
	assert.ErrorIs(t, err, glsurface.ErrGL)
	assert.NotErrorIs(t, err, glsurface.ErrFramebuffer)
}
