// SPDX-License-Identifier: Unlicense OR MIT

package gl

type Enum uint

const (
	COLOR_BUFFER_BIT         = 0x4000
	DEPTH_BUFFER_BIT         = 0x100
	DRAW_FRAMEBUFFER         = 0x8ca9
	FRAMEBUFFER              = 0x8d40
	FRAMEBUFFER_BINDING      = 0x8ca6
	FRAMEBUFFER_COMPLETE     = 0x8cd5
	FRAMEBUFFER_UNDEFINED    = 0x8219
	INVALID_ENUM             = 0x0500
	INVALID_FRAMEBUFFER_OP   = 0x0506
	INVALID_OPERATION        = 0x0502
	INVALID_VALUE            = 0x0501
	MAX_TEXTURE_SIZE         = 0xd33
	MAJOR_VERSION            = 0x821b
	MINOR_VERSION            = 0x821c
	NO_ERROR                 = 0x0
	OUT_OF_MEMORY            = 0x0505
	PACK_ALIGNMENT           = 0xd05
	READ_FRAMEBUFFER         = 0x8ca8
	RENDERER                 = 0x1f01
	RGBA                     = 0x1908
	SCISSOR_TEST             = 0xc11
	SHADING_LANGUAGE_VERSION = 0x8b8c
	STENCIL_BUFFER_BIT       = 0x400
	UNSIGNED_BYTE            = 0x1401
	VENDOR                   = 0x1f00
	VERSION                  = 0x1f02
)

func errorString(e Enum) string {
	switch e {
	case INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case INVALID_FRAMEBUFFER_OP:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return "GL error"
	}
}
