// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// nativeWindow exposes the HWND of a glfw window. EGL uses the default
// display on windows.
type nativeWindow struct {
	w *glfw.Window
}

func (n nativeWindow) NativeDisplay() unsafe.Pointer {
	return nil
}

func (n nativeWindow) NativeWindow() uintptr {
	return uintptr(unsafe.Pointer(n.w.GetWin32Window()))
}
