// SPDX-License-Identifier: Unlicense OR MIT

package gl

import (
	"fmt"
	"strings"
)

// ShaderVersion is a GLSL language version such as 330 or 300 es.
type ShaderVersion struct {
	Number int
	ES     bool
}

var (
	GLSL130   = ShaderVersion{Number: 130}
	GLSL140   = ShaderVersion{Number: 140}
	GLSL150   = ShaderVersion{Number: 150}
	GLSL330   = ShaderVersion{Number: 330}
	GLSL400   = ShaderVersion{Number: 400}
	GLSL410   = ShaderVersion{Number: 410}
	GLSL420   = ShaderVersion{Number: 420}
	GLSL430   = ShaderVersion{Number: 430}
	GLSL440   = ShaderVersion{Number: 440}
	GLSL450   = ShaderVersion{Number: 450}
	GLSL460   = ShaderVersion{Number: 460}
	GLSL100ES = ShaderVersion{Number: 100, ES: true}
	GLSL300ES = ShaderVersion{Number: 300, ES: true}
	GLSL310ES = ShaderVersion{Number: 310, ES: true}
	GLSL320ES = ShaderVersion{Number: 320, ES: true}
)

func (v ShaderVersion) IsZero() bool {
	return v.Number == 0
}

func (v ShaderVersion) String() string {
	switch {
	case v.ES:
		return fmt.Sprintf("%d es", v.Number)
	case v.Number >= 150:
		return fmt.Sprintf("%d core", v.Number)
	default:
		return fmt.Sprintf("%d", v.Number)
	}
}

// Directive returns the #version line shaders for v start with.
func (v ShaderVersion) Directive() string {
	return "#version " + v.String()
}

// ParseShaderVersion parses versions written as in a #version
// directive: "330", "330 core", "300 es" or "#version 150".
func ParseShaderVersion(s string) (ShaderVersion, error) {
	f := strings.Fields(strings.TrimPrefix(strings.TrimSpace(s), "#version"))
	var v ShaderVersion
	if len(f) == 0 || len(f) > 2 {
		return v, fmt.Errorf("gl: invalid shader version %q", s)
	}
	if _, err := fmt.Sscanf(f[0], "%d", &v.Number); err != nil || v.Number <= 0 {
		return ShaderVersion{}, fmt.Errorf("gl: invalid shader version %q", s)
	}
	if len(f) == 2 {
		switch f[1] {
		case "es":
			v.ES = true
		case "core", "compatibility":
		default:
			return ShaderVersion{}, fmt.Errorf("gl: invalid shader profile %q", f[1])
		}
	}
	return v, nil
}

// parseShadingLanguageVersion parses GL_SHADING_LANGUAGE_VERSION
// strings such as "4.60 NVIDIA" or "OpenGL ES GLSL ES 3.20".
func parseShadingLanguageVersion(s string) (ShaderVersion, error) {
	var major, minor int
	if _, err := fmt.Sscanf(s, "OpenGL ES GLSL ES %d.%d", &major, &minor); err == nil {
		return ShaderVersion{Number: major*100 + minor, ES: true}, nil
	}
	if _, err := fmt.Sscanf(s, "%d.%d", &major, &minor); err == nil {
		return ShaderVersion{Number: major*100 + minor}, nil
	}
	return ShaderVersion{}, fmt.Errorf("failed to parse shading language version (%s)", s)
}

// ParseGLVersion parses a GL_VERSION string and reports whether it
// belongs to OpenGL ES.
func ParseGLVersion(glVer string) (ver [2]int, es bool, err error) {
	if _, err := fmt.Sscanf(glVer, "OpenGL ES %d.%d", &ver[0], &ver[1]); err == nil {
		return ver, true, nil
	} else if _, err := fmt.Sscanf(glVer, "%d.%d", &ver[0], &ver[1]); err == nil {
		return ver, false, nil
	}
	return ver, false, fmt.Errorf("failed to parse OpenGL version (%s)", glVer)
}

// supportedBy reports whether a context with GLSL version ctx can compile
// shaders written for v.
func (v ShaderVersion) supportedBy(ctx ShaderVersion) bool {
	if v.ES != ctx.ES {
		// Desktop GL 4.3+ accepts ES 3.00 shaders.
		return v.ES && !ctx.ES && v.Number <= 300 && ctx.Number >= 430
	}
	return v.Number <= ctx.Number
}
