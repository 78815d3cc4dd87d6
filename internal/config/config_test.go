// SPDX-License-Identifier: Unlicense OR MIT

package config

import (
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gioui.org/glsurface/gpu/gl"
)

func TestDefault(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, gl.Core33.String(), cfg.Render.API)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	col, err := cfg.ClearColor()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x20, G: 0x60, B: 0xa0, A: 0xff}, col)

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestDecode(t *testing.T) {
	const src = `
[window]
title = "demo"
width = 1024
height = 768

[render]
api = "compat"
shader_version = "300 es"
access = "gpu-cpu-write-combined"
clear_color = "#ff000080"

[log]
level = "debug"
`
	cfg, err := Decode(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, Window{Title: "demo", Width: 1024, Height: 768}, cfg.Window)
	assert.Equal(t, gl.Compat.String(), cfg.Render.API)

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	col, err := cfg.ClearColor()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0x80}, col)

	lvl, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown key", "[window]\ncolour = 1\n", "unknown keys: window.colour"},
		{"unknown section", "[audio]\nvolume = 3\n", "unknown keys"},
		{"syntax", "[window\n", ""},
		{"size", "[window]\nwidth = 0\n", "invalid size"},
		{"api", "[render]\napi = \"vulkan\"\n", "unknown api"},
		{"shader without compat", "[render]\nshader_version = \"330\"\n", "requires api"},
		{"shader", "[render]\napi = \"compat\"\nshader_version = \"x\"\n", "invalid shader version"},
		{"access", "[render]\naccess = \"cpu\"\n", "unknown access"},
		{"color", "[render]\nclear_color = \"red\"\n", "invalid clear_color"},
		{"color digits", "[render]\nclear_color = \"#gg0000\"\n", "invalid clear_color"},
		{"level", "[log]\nlevel = \"loud\"\n", "log:"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(test.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glclear.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window]\ntitle = \"file\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Window.Title)
	assert.Equal(t, 800, cfg.Window.Width)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
