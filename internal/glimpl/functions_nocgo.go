// SPDX-License-Identifier: Unlicense OR MIT

//go:build !cgo

package glimpl

import (
	"errors"
	"unsafe"

	"gioui.org/glsurface/gpu/gl"
)

func Load(lookup func(name string) unsafe.Pointer) (gl.Functions, error) {
	return nil, errors.New("glimpl: loading GL functions requires cgo")
}
