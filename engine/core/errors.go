package core

import (
	"errors"
	"fmt"
)

var (
	ErrShaderLink        = errors.New("shader program is not linked")
	ErrPipelineAlignment = errors.New("misaligned user-defined vertex attributes")
	ErrMissingAttribute  = errors.New("vertex is missing a user-defined attribute")
	ErrBackendAllocation = errors.New("graphics backend allocation failed")
	ErrShaderNotFound    = errors.New("shader not found")
	ErrMaterialNotFound  = errors.New("material not found")
	ErrNoShaderBound     = errors.New("no shader program in use")
	ErrFaceAlreadyBound  = errors.New("face already belongs to a polygon")
	ErrIndexOutOfRange   = errors.New("vertex index out of range")
	ErrUnknown           = errors.New("unknown")
)

/**
 * @brief Raised when a program is introspected or used before it linked.
 */
type ShaderLinkError struct {
	/** @brief The backend program handle, 0 when none was created. */
	Program uint32
	/** @brief The info log reported by the driver, if any. */
	Log string
}

func (e *ShaderLinkError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("shader program %d failed to link", e.Program)
	}
	return fmt.Sprintf("shader program %d failed to link: %s", e.Program, e.Log)
}

func (e *ShaderLinkError) Unwrap() error { return ErrShaderLink }

/**
 * @brief Raised when the number of scalars written for a vertex does not
 * match what the bound shader declares for that base type.
 */
type PipelineAlignmentError struct {
	VertexIndex int
	BaseType    string
	/** @brief The first attribute whose size disagreed, empty when only the totals differ. */
	Attribute string
	/** @brief Scalars declared by the shader. */
	Expected int
	/** @brief Scalars supplied by the vertex. */
	Actual int
}

func (e *PipelineAlignmentError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("vertex %d: misaligned %s attribute `%s`, expected %d scalars but got %d",
			e.VertexIndex, e.BaseType, e.Attribute, e.Expected, e.Actual)
	}
	return fmt.Sprintf("vertex %d: misaligned %s attributes, expected %d scalars but got %d",
		e.VertexIndex, e.BaseType, e.Expected, e.Actual)
}

func (e *PipelineAlignmentError) Unwrap() error { return ErrPipelineAlignment }

/**
 * @brief Raised when a vertex has no value for an attribute the bound shader requires.
 */
type MissingAttributeError struct {
	/** @brief Index of the vertex in its polygon, -1 when not known. */
	VertexIndex int
	Location    int32
	/** @brief Attribute name, empty when only the location is known. */
	Name     string
	BaseType string
}

func (e *MissingAttributeError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("vertex %d has no %s attribute `%s` at location %d",
		e.VertexIndex, e.BaseType, name, e.Location)
}

func (e *MissingAttributeError) Unwrap() error { return ErrMissingAttribute }
