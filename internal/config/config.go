// SPDX-License-Identifier: Unlicense OR MIT

// Package config decodes the TOML configuration of the glclear
// program.
package config

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"gioui.org/glsurface"
	"gioui.org/glsurface/gpu/gl"
	"gioui.org/glsurface/platform"
)

type Config struct {
	Window Window `toml:"window"`
	Render Render `toml:"render"`
	Log    Log    `toml:"log"`
}

type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type Render struct {
	// API is "gl33" or "compat".
	API string `toml:"api"`
	// ShaderVersion selects the compat backend, for example "300 es".
	ShaderVersion string `toml:"shader_version"`
	// Access is empty for the backend default, or one of "gpu",
	// "gpu-cpu" and "gpu-cpu-write-combined".
	Access string `toml:"access"`
	// ClearColor is #rrggbb or #rrggbbaa.
	ClearColor string `toml:"clear_color"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used for missing keys.
func Default() Config {
	return Config{
		Window: Window{
			Title:  "glclear",
			Width:  800,
			Height: 600,
		},
		Render: Render{
			API:        gl.Core33.String(),
			ClearColor: "#2060a0",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a configuration from r on top of Default. Unknown keys
// are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, err
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting of c.
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window: invalid size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := c.Options(); err != nil {
		return err
	}
	if _, err := c.ClearColor(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// Options converts the render settings to session options.
func (c Config) Options() ([]glsurface.Option, error) {
	var opts []glsurface.Option
	api, err := parseAPI(c.Render.API)
	if err != nil {
		return nil, err
	}
	switch {
	case c.Render.ShaderVersion != "":
		if api != gl.Compat {
			return nil, fmt.Errorf("render: shader_version requires api %q", gl.Compat)
		}
		v, err := gl.ParseShaderVersion(c.Render.ShaderVersion)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		opts = append(opts, glsurface.WithShaderVersion(v))
	default:
		opts = append(opts, glsurface.WithAPI(api))
	}
	if c.Render.Access != "" {
		a, err := parseAccess(c.Render.Access)
		if err != nil {
			return nil, err
		}
		opts = append(opts, glsurface.WithSurfaceAccess(a))
	}
	return opts, nil
}

func parseAPI(s string) (gl.API, error) {
	for _, api := range []gl.API{gl.Core33, gl.Compat} {
		if s == api.String() {
			return api, nil
		}
	}
	return 0, fmt.Errorf("render: unknown api %q", s)
}

func parseAccess(s string) (platform.SurfaceAccess, error) {
	for _, a := range []platform.SurfaceAccess{platform.GPUOnly, platform.GPUCPU, platform.GPUCPUWriteCombined} {
		if s == a.String() {
			return a, nil
		}
	}
	return 0, fmt.Errorf("render: unknown access %q", s)
}

// ClearColor parses the configured clear color.
func (c Config) ClearColor() (color.NRGBA, error) {
	s := c.Render.ClearColor
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.NRGBA{}, fmt.Errorf("render: invalid clear_color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("render: invalid clear_color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// LogLevel parses the configured log level.
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log: %w", err)
	}
	return l, nil
}
