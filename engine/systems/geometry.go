package systems

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/geom"
	"github.com/spaghettifunk/lumen/engine/renderer"
)

type GeometrySystemConfig struct {
	/**
	 * @brief Max number of polygons that can be registered at once.
	 */
	MaxGeometryCount uint32
}

type GeometryReference struct {
	Polygon        *geom.Polygon
	ReferenceCount uint64
	AutoRelease    bool
}

/**
 * @brief Keeps the polygons of the scene, reference counted, in the order
 * they were registered.
 */
type GeometrySystem struct {
	Config *GeometrySystemConfig
	// Registered polygons by id.
	RegisteredGeometries map[uuid.UUID]*GeometryReference
	order                []uuid.UUID
}

func NewGeometrySystem(config *GeometrySystemConfig) (*GeometrySystem, error) {
	if config.MaxGeometryCount == 0 {
		err := fmt.Errorf("func NewGeometrySystem - config.MaxGeometryCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &GeometrySystem{
		Config:               config,
		RegisteredGeometries: make(map[uuid.UUID]*GeometryReference),
	}, nil
}

/**
 * @brief Registers a polygon with a reference count of 1. With autoRelease
 * the polygon's buffers are freed and the entry dropped when the count
 * reaches zero.
 */
func (gs *GeometrySystem) Register(polygon *geom.Polygon, autoRelease bool) error {
	if _, ok := gs.RegisteredGeometries[polygon.ID()]; ok {
		err := fmt.Errorf("polygon %s is already registered", polygon.ID())
		core.LogError(err.Error())
		return err
	}
	if uint32(len(gs.RegisteredGeometries)) >= gs.Config.MaxGeometryCount {
		err := fmt.Errorf("unable to register polygon %s: no free slots, adjust configuration to allow more", polygon.ID())
		core.LogError(err.Error())
		return err
	}
	gs.RegisteredGeometries[polygon.ID()] = &GeometryReference{
		Polygon:        polygon,
		ReferenceCount: 1,
		AutoRelease:    autoRelease,
	}
	gs.order = append(gs.order, polygon.ID())
	return nil
}

// Acquire returns the polygon and increments its reference count.
func (gs *GeometrySystem) Acquire(id uuid.UUID) (*geom.Polygon, error) {
	ref, ok := gs.RegisteredGeometries[id]
	if !ok {
		err := fmt.Errorf("func GeometrySystem.Acquire cannot load invalid polygon id %s", id)
		core.LogError(err.Error())
		return nil, err
	}
	ref.ReferenceCount++
	return ref.Polygon, nil
}

// Release decrements the reference count, cleaning up auto-release polygons at zero.
func (gs *GeometrySystem) Release(id uuid.UUID) error {
	ref, ok := gs.RegisteredGeometries[id]
	if !ok {
		err := fmt.Errorf("func GeometrySystem.Release cannot release invalid polygon id %s", id)
		core.LogError(err.Error())
		return err
	}
	if ref.ReferenceCount > 0 {
		ref.ReferenceCount--
	}
	if ref.ReferenceCount == 0 && ref.AutoRelease {
		ref.Polygon.Clean()
		gs.forget(id)
	}
	return nil
}

func (gs *GeometrySystem) forget(id uuid.UUID) {
	delete(gs.RegisteredGeometries, id)
	for i, o := range gs.order {
		if o == id {
			gs.order = append(gs.order[:i], gs.order[i+1:]...)
			return
		}
	}
}

// Each calls fn on every polygon in registration order, stopping at the first error.
func (gs *GeometrySystem) Each(fn func(*geom.Polygon) error) error {
	for _, id := range gs.order {
		if err := fn(gs.RegisteredGeometries[id].Polygon); err != nil {
			return err
		}
	}
	return nil
}

// Drawables returns the registered polygons for a render packet.
func (gs *GeometrySystem) Drawables() []renderer.Drawable {
	out := make([]renderer.Drawable, 0, len(gs.order))
	for _, id := range gs.order {
		out = append(out, gs.RegisteredGeometries[id].Polygon)
	}
	return out
}

func (gs *GeometrySystem) Count() int {
	return len(gs.order)
}

// Shutdown frees every polygon's buffers and empties the registry.
func (gs *GeometrySystem) Shutdown() error {
	for _, id := range gs.order {
		gs.RegisteredGeometries[id].Polygon.Clean()
	}
	gs.RegisteredGeometries = make(map[uuid.UUID]*GeometryReference)
	gs.order = nil
	return nil
}
