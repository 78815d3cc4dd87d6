// SPDX-License-Identifier: Unlicense OR MIT

package gl

import (
	"errors"
	"fmt"
	"image"
)

// API selects the flavour of backend.
type API uint8

const (
	// Core33 targets an OpenGL 3.3 core context. It presents while
	// acquiring the back buffer.
	Core33 API = iota
	// Compat targets any desktop or ES context whose shading language
	// accepts a caller-selected ShaderVersion.
	Compat
)

func (a API) String() string {
	switch a {
	case Core33:
		return "gl33"
	case Compat:
		return "compat"
	default:
		return fmt.Sprintf("API(%d)", uint8(a))
	}
}

// Config configures NewBackend.
type Config struct {
	API API
	// ShaderVersion is the GLSL version shaders are written for.
	// Compat only; zero means GLSL330.
	ShaderVersion ShaderVersion
	// ReadBack enables Target.ReadPixels. Set it only for surfaces the
	// host can read.
	ReadBack bool
}

// Caps describes the context a Backend runs on.
type Caps struct {
	// Version is the GL_VERSION as major, minor.
	Version  [2]int
	ES       bool
	GLSL     ShaderVersion
	Vendor   string
	Renderer string

	MaxTextureSize int
	// ReadPixels reports whether targets support ReadPixels.
	ReadPixels bool
}

// Backend is the graphics API binding of a current context.
type Backend struct {
	funcs  Functions
	api    API
	shader ShaderVersion
	defFBO Framebuffer
	caps   Caps
}

// StateQueryError is returned by NewBackend when the context state
// cannot be queried or does not meet the backend requirements.
type StateQueryError struct {
	Query string
	Err   error
}

func (e *StateQueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Query, e.Err)
}

func (e *StateQueryError) Unwrap() error { return e.Err }

// FramebufferError is returned when a render target cannot be built.
type FramebufferError struct {
	Size image.Point
	Err  error
}

func (e *FramebufferError) Error() string {
	return fmt.Sprintf("framebuffer %dx%d: %v", e.Size.X, e.Size.Y, e.Err)
}

func (e *FramebufferError) Unwrap() error { return e.Err }

// ErrNoReadPixels is returned by Target.ReadPixels for backends
// created without Config.ReadBack.
var ErrNoReadPixels = errors.New("gl: backend does not read pixels back")

// NewBackend queries the state of the current context. The context
// must stay current for the lifetime of the Backend.
func NewBackend(f Functions, cfg Config) (*Backend, error) {
	b := &Backend{funcs: f, api: cfg.API}
	glVer := f.GetString(VERSION)
	ver, es, err := ParseGLVersion(glVer)
	if err != nil {
		return nil, &StateQueryError{Query: "GL_VERSION", Err: err}
	}
	glslVer := f.GetString(SHADING_LANGUAGE_VERSION)
	glsl, err := parseShadingLanguageVersion(glslVer)
	if err != nil {
		return nil, &StateQueryError{Query: "GL_SHADING_LANGUAGE_VERSION", Err: err}
	}
	switch cfg.API {
	case Core33:
		if es || ver[0] < 3 || ver[0] == 3 && ver[1] < 3 {
			return nil, &StateQueryError{Query: "GL_VERSION", Err: fmt.Errorf("OpenGL 3.3 required, got %s", glVer)}
		}
		b.shader = GLSL330
	case Compat:
		b.shader = cfg.ShaderVersion
		if b.shader.IsZero() {
			b.shader = GLSL330
		}
		if !b.shader.supportedBy(glsl) {
			return nil, &StateQueryError{
				Query: "GL_SHADING_LANGUAGE_VERSION",
				Err:   fmt.Errorf("shader version %s not supported by GLSL %s", b.shader, glsl),
			}
		}
	default:
		return nil, fmt.Errorf("gl: unknown API %v", cfg.API)
	}
	b.defFBO = Framebuffer{V: uint(f.GetInteger(FRAMEBUFFER_BINDING))}
	b.caps = Caps{
		Version:        ver,
		ES:             es,
		GLSL:           glsl,
		Vendor:         f.GetString(VENDOR),
		Renderer:       f.GetString(RENDERER),
		MaxTextureSize: f.GetInteger(MAX_TEXTURE_SIZE),
		ReadPixels:     cfg.ReadBack,
	}
	if e := f.GetError(); e != NO_ERROR {
		return nil, &StateQueryError{Query: "glGetError", Err: fmt.Errorf("%s (0x%x)", errorString(e), uint(e))}
	}
	return b, nil
}

func (b *Backend) API() API {
	return b.api
}

// ShaderVersion returns the GLSL version shaders for b must target.
func (b *Backend) ShaderVersion() ShaderVersion {
	return b.shader
}

func (b *Backend) Caps() Caps {
	return b.caps
}

// BackBuffer returns a Target drawing into the default framebuffer of
// the current surface, which is size pixels large.
func (b *Backend) BackBuffer(size image.Point) (*Target, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, &FramebufferError{Size: size, Err: errors.New("empty size")}
	}
	f := b.funcs
	f.BindFramebuffer(FRAMEBUFFER, b.defFBO)
	if st := f.CheckFramebufferStatus(FRAMEBUFFER); st != FRAMEBUFFER_COMPLETE {
		return nil, &FramebufferError{Size: size, Err: fmt.Errorf("incomplete framebuffer (status 0x%x)", uint(st))}
	}
	f.Viewport(0, 0, size.X, size.Y)
	if e := f.GetError(); e != NO_ERROR {
		return nil, &FramebufferError{Size: size, Err: fmt.Errorf("%s (0x%x)", errorString(e), uint(e))}
	}
	return &Target{backend: b, fbo: b.defFBO, size: size}, nil
}
