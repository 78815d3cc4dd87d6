// SPDX-License-Identifier: Unlicense OR MIT

package egl

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	syscall "golang.org/x/sys/windows"
)

type (
	_EGLint           int32
	_EGLDisplay       uintptr
	_EGLConfig        uintptr
	_EGLContext       uintptr
	_EGLSurface       uintptr
	NativeDisplayType uintptr
	NativeWindowType  uintptr
)

// proc indexes the EGL entry points resolved from libEGL.dll.
type proc int

const (
	procBindAPI proc = iota
	procChooseConfig
	procCreateContext
	procCreateWindowSurface
	procDestroyContext
	procDestroySurface
	procGetDisplay
	procGetError
	procGetProcAddress
	procInitialize
	procMakeCurrent
	procQueryString
	procQuerySurface
	procReleaseThread
	procSwapBuffers
	procTerminate
	numProcs
)

var procNames = [numProcs]string{
	procBindAPI:             "eglBindAPI",
	procChooseConfig:        "eglChooseConfig",
	procCreateContext:       "eglCreateContext",
	procCreateWindowSurface: "eglCreateWindowSurface",
	procDestroyContext:      "eglDestroyContext",
	procDestroySurface:      "eglDestroySurface",
	procGetDisplay:          "eglGetDisplay",
	procGetError:            "eglGetError",
	procGetProcAddress:      "eglGetProcAddress",
	procInitialize:          "eglInitialize",
	procMakeCurrent:         "eglMakeCurrent",
	procQueryString:         "eglQueryString",
	procQuerySurface:        "eglQuerySurface",
	procReleaseThread:       "eglReleaseThread",
	procSwapBuffers:         "eglSwapBuffers",
	procTerminate:           "eglTerminate",
}

var (
	loadOnce sync.Once
	loadErr  error
	procs    [numProcs]*syscall.Proc
)

func loadEGL() error {
	loadOnce.Do(func() {
		loadErr = loadProcs("libEGL.dll")
	})
	return loadErr
}

func loadProcs(name string) error {
	// Restrict the search to the application and system directories.
	handle, err := syscall.LoadLibraryEx(name, 0, syscall.LOAD_LIBRARY_SEARCH_DEFAULT_DIRS)
	if err != nil {
		return fmt.Errorf("egl: failed to load %s: %v", name, err)
	}
	dll := &syscall.DLL{Name: name, Handle: handle}
	for i, pname := range procNames {
		p, err := dll.FindProc(pname)
		if err != nil {
			return fmt.Errorf("egl: failed to locate %s in %s: %w", pname, name, err)
		}
		procs[i] = p
	}
	return nil
}

// call invokes p. Pointers converted to uintptr in the argument list
// stay valid for the duration of the call.
//
//go:uintptrescapes
func (p proc) call(args ...uintptr) uintptr {
	r, _, _ := procs[p].Call(args...)
	return r
}

func nativeDisplay(disp unsafe.Pointer) NativeDisplayType {
	return NativeDisplayType(disp)
}

func eglBindAPI(api _EGLint) bool {
	return procBindAPI.call(uintptr(api)) != 0
}

func eglChooseConfig(disp _EGLDisplay, attribs []_EGLint) (_EGLConfig, bool) {
	var cfg _EGLConfig
	var ncfg _EGLint
	r := procChooseConfig.call(uintptr(disp), uintptr(unsafe.Pointer(&attribs[0])), uintptr(unsafe.Pointer(&cfg)), 1, uintptr(unsafe.Pointer(&ncfg)))
	runtime.KeepAlive(attribs)
	return cfg, r != 0
}

func eglCreateContext(disp _EGLDisplay, cfg _EGLConfig, shareCtx _EGLContext, attribs []_EGLint) _EGLContext {
	c := procCreateContext.call(uintptr(disp), uintptr(cfg), uintptr(shareCtx), uintptr(unsafe.Pointer(&attribs[0])))
	runtime.KeepAlive(attribs)
	return _EGLContext(c)
}

func eglCreateWindowSurface(disp _EGLDisplay, cfg _EGLConfig, win NativeWindowType, attribs []_EGLint) _EGLSurface {
	s := procCreateWindowSurface.call(uintptr(disp), uintptr(cfg), uintptr(win), uintptr(unsafe.Pointer(&attribs[0])))
	runtime.KeepAlive(attribs)
	return _EGLSurface(s)
}

func eglDestroySurface(disp _EGLDisplay, surf _EGLSurface) bool {
	return procDestroySurface.call(uintptr(disp), uintptr(surf)) != 0
}

func eglDestroyContext(disp _EGLDisplay, ctx _EGLContext) bool {
	return procDestroyContext.call(uintptr(disp), uintptr(ctx)) != 0
}

func eglGetDisplay(disp NativeDisplayType) _EGLDisplay {
	return _EGLDisplay(procGetDisplay.call(uintptr(disp)))
}

func eglGetError() _EGLint {
	return _EGLint(procGetError.call())
}

func eglGetProcAddress(name string) unsafe.Pointer {
	cname, err := syscall.BytePtrFromString(name)
	if err != nil {
		return nil
	}
	r := procGetProcAddress.call(uintptr(unsafe.Pointer(cname)))
	runtime.KeepAlive(cname)
	return *(*unsafe.Pointer)(unsafe.Pointer(&r))
}

func eglInitialize(disp _EGLDisplay) (_EGLint, _EGLint, bool) {
	var major, minor _EGLint
	r := procInitialize.call(uintptr(disp), uintptr(unsafe.Pointer(&major)), uintptr(unsafe.Pointer(&minor)))
	return major, minor, r != 0
}

func eglMakeCurrent(disp _EGLDisplay, draw, read _EGLSurface, ctx _EGLContext) bool {
	return procMakeCurrent.call(uintptr(disp), uintptr(draw), uintptr(read), uintptr(ctx)) != 0
}

func eglReleaseThread() bool {
	return procReleaseThread.call() != 0
}

func eglSwapBuffers(disp _EGLDisplay, surf _EGLSurface) bool {
	return procSwapBuffers.call(uintptr(disp), uintptr(surf)) != 0
}

func eglTerminate(disp _EGLDisplay) bool {
	return procTerminate.call(uintptr(disp)) != 0
}

func eglQueryString(disp _EGLDisplay, name _EGLint) string {
	r := procQueryString.call(uintptr(disp), uintptr(name))
	return syscall.BytePtrToString(*(**byte)(unsafe.Pointer(&r)))
}

func eglQuerySurface(disp _EGLDisplay, surf _EGLSurface, attr _EGLint) (_EGLint, bool) {
	var val _EGLint
	r := procQuerySurface.call(uintptr(disp), uintptr(surf), uintptr(attr), uintptr(unsafe.Pointer(&val)))
	return val, r != 0
}
