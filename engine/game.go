package engine

import (
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/systems"
)

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Set by the engine before FnInitialize runs.
	SystemManager *systems.SystemManager
	Renderer      *renderer.Renderer
	State         interface{}
	FnInitialize  Initialize
	FnUpdate      Update
	FnRender      Render
	FnOnResize    OnResize
	// Decides what a failed frame means. Returning an error, or leaving it nil, stops the engine.
	FnOnRenderError RenderError
	FnShutdown      Shutdown
}

type Initialize func() error
type Update func(deltaTime float64) error
type Render func(packet *renderer.RenderPacket, deltaTime float64) error
type OnResize func(width uint32, height uint32) error
type RenderError func(err error) error
type Shutdown func() error
