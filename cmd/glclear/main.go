// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd || windows

// Command glclear opens a window and clears its surface every frame
// through a glsurface.Session.
//
// Usage:
//
//	glclear [-config file] [-frames n] [-screenshot file.bmp]
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"golang.org/x/image/bmp"

	"gioui.org/glsurface"
	"gioui.org/glsurface/gpu/gl"
	"gioui.org/glsurface/internal/config"
	"gioui.org/glsurface/platform/egl"
)

var (
	configFile = flag.String("config", "", "read settings from the TOML `file`")
	frames     = flag.Int("frames", 0, "exit after `n` frames; 0 runs until the window is closed")
	screenshot = flag.String("screenshot", "", "write the last frame to a BMP `file` (requires -frames and read-back access)")
)

func init() {
	// The session context is current on the thread that created it.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	if err := mainErr(); err != nil {
		fmt.Fprintf(os.Stderr, "glclear: %v\n", err)
		os.Exit(1)
	}
}

func mainErr() error {
	cfg := config.Default()
	if *configFile != "" {
		c, err := config.Load(*configFile)
		if err != nil {
			return err
		}
		cfg = c
	}
	if *screenshot != "" && *frames <= 0 {
		return errors.New("-screenshot requires -frames")
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	clearColor, err := cfg.ClearColor()
	if err != nil {
		return err
	}

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw: %w", err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	win, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("glfw: %w", err)
	}
	defer win.Destroy()

	sess, err := glsurface.New(egl.Provider{}, nativeWindow{win}, append(opts, glsurface.WithLogger(logger))...)
	if err != nil {
		return err
	}
	defer sess.Release()
	if *screenshot != "" && !sess.SurfaceAccess().CPUReadable() {
		return fmt.Errorf("-screenshot: surface access %s is not CPU readable", sess.SurfaceAccess())
	}

	var resize image.Point
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		resize = image.Pt(width, height)
	})
	resize = image.Pt(win.GetFramebufferSize())

	start := time.Now()
	for n := 0; !win.ShouldClose() && (*frames == 0 || n < *frames); n++ {
		glfw.PollEvents()
		// Minimized windows report an empty framebuffer.
		if resize.X > 0 && resize.Y > 0 {
			if err := sess.SetSize(resize); err != nil {
				return err
			}
			resize = image.Point{}
		}
		target, err := sess.BackBuffer()
		if err != nil {
			return err
		}
		target.Clear(pulse(clearColor, time.Since(start)))
		if *screenshot != "" && n == *frames-1 {
			if err := capture(target, *screenshot); err != nil {
				return err
			}
			logger.Info("wrote screenshot", "file", *screenshot)
		}
		if err := sess.SwapBuffers(); err != nil {
			return err
		}
	}
	return nil
}

// pulse modulates the brightness of c with a two second period.
func pulse(c color.NRGBA, t time.Duration) color.NRGBA {
	f := 0.75 + 0.25*math.Sin(2*math.Pi*t.Seconds()/2)
	scale := func(v uint8) uint8 {
		return uint8(math.Round(float64(v) * f))
	}
	return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

func capture(t *gl.Target, path string) error {
	img := image.NewRGBA(image.Rectangle{Max: t.Size()})
	if err := t.ReadPixels(img); err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("screenshot: %w", err)
	}
	return f.Close()
}
