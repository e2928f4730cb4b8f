package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-compatibility/gl"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile %s: %s", stageName(shaderType), strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func stageName(shaderType uint32) string {
	if shaderType == gl.FRAGMENT_SHADER {
		return "fragment stage"
	}
	return "vertex stage"
}

// linkProgram links both stages. A failed link returns the program together with a *core.ShaderLinkError.
func linkProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))

		return program, &core.ShaderLinkError{Program: program, Log: strings.TrimRight(log, "\x00")}
	}
	return program, nil
}

type activeQuery func(program, index uint32, bufSize int32, length *int32, size *int32, xtype *uint32, name *uint8)

// activeVariables enumerates attributes or uniforms in driver order.
func activeVariables(program uint32, countParam, maxLengthParam uint32, query activeQuery, locate func(uint32, *uint8) int32) []renderer.ActiveVariable {
	var count, maxLength int32
	gl.GetProgramiv(program, countParam, &count)
	gl.GetProgramiv(program, maxLengthParam, &maxLength)

	out := make([]renderer.ActiveVariable, 0, count)
	buf := make([]uint8, maxLength+1)
	for i := uint32(0); i < uint32(count); i++ {
		var length, size int32
		var xtype uint32
		query(program, i, int32(len(buf)), &length, &size, &xtype, &buf[0])
		name := string(buf[:length])

		location := int32(-1)
		if !strings.HasPrefix(name, metadata.BuiltinPrefix) {
			location = locate(program, gl.Str(name+"\x00"))
		}
		out = append(out, renderer.ActiveVariable{
			Name:     name,
			Type:     metadata.GLSLType(xtype),
			Size:     size,
			Location: location,
		})
	}
	return out
}
