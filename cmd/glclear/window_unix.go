// SPDX-License-Identifier: Unlicense OR MIT

//go:build linux || freebsd

package main

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// nativeWindow exposes the X11 handles of a glfw window.
type nativeWindow struct {
	w *glfw.Window
}

func (n nativeWindow) NativeDisplay() unsafe.Pointer {
	return unsafe.Pointer(glfw.GetX11Display())
}

func (n nativeWindow) NativeWindow() uintptr {
	return uintptr(n.w.GetX11Window())
}
