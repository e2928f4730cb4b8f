package geom

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/math"
)

/**
 * @brief A triangle given by three vertex indices in counter-clockwise order.
 * A face is bound to exactly one polygon, once.
 */
type Face struct {
	indices [3]uint16

	owner   uuid.UUID
	polygon *Polygon
}

func NewFace(i1, i2, i3 uint16) *Face {
	return &Face{indices: [3]uint16{i1, i2, i3}}
}

func (f *Face) Indices() [3]uint16 {
	return f.indices
}

// Owner returns the id of the polygon the face belongs to.
func (f *Face) Owner() (uuid.UUID, bool) {
	return f.owner, f.polygon != nil
}

// bind records p as owner, it reports false when the face already has one.
func (f *Face) bind(p *Polygon) bool {
	if f.polygon != nil {
		return false
	}
	f.polygon = p
	f.owner = p.id
	return true
}

// Vertices returns the three vertices of a bound face.
func (f *Face) Vertices() (*Vertex, *Vertex, *Vertex, bool) {
	if f.polygon == nil {
		return nil, nil, nil, false
	}
	p := f.polygon
	return p.vertices[f.indices[0]], p.vertices[f.indices[1]], p.vertices[f.indices[2]], true
}

// Normal returns the unnormalised face normal, ok is false until the face is bound.
func (f *Face) Normal() (math.Vec3, bool) {
	v1, v2, v3, ok := f.Vertices()
	if !ok {
		return math.Vec3{}, false
	}
	return v2.position.Sub(v1.position).Cross(v3.position.Sub(v1.position)), true
}

// IsOpaque is true when all three vertices are opaque. Unbound faces are opaque.
func (f *Face) IsOpaque() bool {
	v1, v2, v3, ok := f.Vertices()
	if !ok {
		return true
	}
	return v1.IsOpaque() && v2.IsOpaque() && v3.IsOpaque()
}

func (f *Face) SetColor(r, g, b, a float32) {
	v1, v2, v3, ok := f.Vertices()
	if !ok {
		return
	}
	v1.SetColor(r, g, b, a)
	v2.SetColor(r, g, b, a)
	v3.SetColor(r, g, b, a)
}
