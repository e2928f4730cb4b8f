package geom

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

/**
 * @brief A polyhedron: an ordered set of vertices and the faces formed from
 * them. Each polygon owns the attribute pipeline that draws it.
 */
type Polygon struct {
	id uuid.UUID

	vertices []*Vertex
	faces    []*Face

	// the same slices seen through the pipeline's interfaces
	vertexSources []renderer.VertexSource
	faceSources   []renderer.FaceSource

	generation uint64
	pipeline   *renderer.AttributePipeline
}

/**
 * @brief Creates a polygon that takes ownership of vertices. A vertex can
 * belong to a single polygon.
 */
func NewPolygon(vertices ...*Vertex) (*Polygon, error) {
	p := &Polygon{
		id:         uuid.New(),
		generation: 1,
	}
	for _, v := range vertices {
		if err := p.AddVertex(v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Polygon) ID() uuid.UUID {
	return p.id
}

// AddVertex appends v and returns an error when it already belongs to a polygon.
func (p *Polygon) AddVertex(v *Vertex) error {
	if v.owner != nil {
		err := fmt.Errorf("vertex %s already belongs to polygon %s", v, v.owner.id)
		core.LogError(err.Error())
		return err
	}
	if len(p.vertices) > int(^uint16(0)) {
		err := fmt.Errorf("polygon %s cannot index more than %d vertices", p.id, int(^uint16(0))+1)
		core.LogError(err.Error())
		return err
	}
	v.owner = p
	p.vertices = append(p.vertices, v)
	p.vertexSources = append(p.vertexSources, v)
	p.MarkDirty()
	return nil
}

func (p *Polygon) Vertex(i int) *Vertex {
	return p.vertices[i]
}

func (p *Polygon) Vertices() []*Vertex {
	return append([]*Vertex(nil), p.vertices...)
}

func (p *Polygon) VertexCount() int {
	return len(p.vertices)
}

func (p *Polygon) indexOf(v *Vertex) int {
	for i, candidate := range p.vertices {
		if candidate == v {
			return i
		}
	}
	return -1
}

/**
 * @brief Binds face to this polygon and computes the tangents of its three
 * vertices. It returns false, leaving everything untouched, when the face
 * already belongs to a polygon or references a vertex that does not exist.
 */
func (p *Polygon) AddFace(face *Face) bool {
	for _, i := range face.indices {
		if int(i) >= len(p.vertices) {
			core.LogWarn("polygon %s: face references vertex %d of %d", p.id, i, len(p.vertices))
			return false
		}
	}
	if !face.bind(p) {
		core.LogWarn("polygon %s: %s", p.id, core.ErrFaceAlreadyBound)
		return false
	}
	p.faces = append(p.faces, face)
	p.faceSources = append(p.faceSources, face)

	v1, v2, v3, _ := face.Vertices()
	v1.ComputeTangent(v2, v3)
	v2.ComputeTangent(v3, v1)
	v3.ComputeTangent(v1, v2)
	p.MarkDirty()
	return true
}

func (p *Polygon) AddTriangle(i1, i2, i3 uint16) bool {
	return p.AddFace(NewFace(i1, i2, i3))
}

// AddQuad adds two faces sharing the edge i1-i3.
func (p *Polygon) AddQuad(i1, i2, i3, i4 uint16) bool {
	first := p.AddTriangle(i1, i2, i3)
	second := p.AddTriangle(i1, i3, i4)
	return first && second
}

/**
 * @brief Adds a triangle strip. Every other face has its winding flipped so
 * all faces stay counter-clockwise.
 */
func (p *Polygon) AddFaceStrip(indices ...uint16) bool {
	ok := len(indices) >= 3
	for i := 2; i < len(indices); i++ {
		if i%2 == 0 {
			ok = p.AddTriangle(indices[i-2], indices[i-1], indices[i]) && ok
		} else {
			ok = p.AddTriangle(indices[i-2], indices[i], indices[i-1]) && ok
		}
	}
	return ok
}

// AddFaceFan adds a triangle fan around indices[0].
func (p *Polygon) AddFaceFan(indices ...uint16) bool {
	ok := len(indices) >= 3
	for i := 2; i < len(indices); i++ {
		ok = p.AddTriangle(indices[0], indices[i-1], indices[i]) && ok
	}
	return ok
}

func (p *Polygon) Faces() []*Face {
	return append([]*Face(nil), p.faces...)
}

func (p *Polygon) FaceCount() int {
	return len(p.faces)
}

func (p *Polygon) IndexCount() int {
	return len(p.faces) * 3
}

/**
 * @brief Splits the faces into opaque and translucent ones. Translucent faces
 * are returned unsorted.
 */
func (p *Polygon) FaceLists() (opaque []*Face, translucent []*Face) {
	for _, f := range p.faces {
		if f.IsOpaque() {
			opaque = append(opaque, f)
		} else {
			translucent = append(translucent, f)
		}
	}
	return opaque, translucent
}

// SetColor colours every vertex.
func (p *Polygon) SetColor(r, g, b, a float32) {
	for _, v := range p.vertices {
		v.SetColor(r, g, b, a)
	}
}

func (p *Polygon) SetColorRGB(r, g, b float32) {
	p.SetColor(r, g, b, 1)
}

func (p *Polygon) SetColorHex(argb uint32, hasAlpha bool) {
	c := math.ColorFromARGB(argb, hasAlpha)
	p.SetColor(c.X, c.Y, c.Z, c.W)
}

func (p *Polygon) SetColorBytes(r, g, b, a uint8) {
	c := math.ColorFromBytes(r, g, b, a)
	p.SetColor(c.X, c.Y, c.Z, c.W)
}

/**
 * @brief Copies every vertex tangent into the float attribute at location, so
 * a shader can read it as a user attribute.
 */
func (p *Polygon) BindTangents(location int32) {
	for _, v := range p.vertices {
		t := v.Tangent()
		v.SetAttribfv(location, t[:]...)
	}
}

// Generation changes every time vertex or face data changes.
func (p *Polygon) Generation() uint64 {
	return p.generation
}

func (p *Polygon) MarkDirty() {
	p.generation++
}

// Pipeline returns the pipeline drawing this polygon, nil before the first Render.
func (p *Polygon) Pipeline() *renderer.AttributePipeline {
	return p.pipeline
}

// Render draws the polygon with the renderer's current shader.
func (p *Polygon) Render(r *renderer.Renderer) error {
	if p.pipeline == nil {
		p.pipeline = renderer.NewAttributePipeline(r.Backend())
	}
	if err := r.Draw(p.pipeline, p.vertexSources, p.faceSources, p.generation); err != nil {
		return fmt.Errorf("polygon %s: %w", p.id, err)
	}
	return nil
}

// Clean frees the polygon's buffers. It is safe to call more than once.
func (p *Polygon) Clean() {
	if p.pipeline != nil {
		p.pipeline.Clean()
	}
}
