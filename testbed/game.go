package testbed

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/lumen/engine"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/geom"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/components"
)

const (
	tangentAttribute = "aTangent"
	pickAttribute    = "aPick"
)

type TestGame struct {
	*engine.Game
}

// spinner is a sprite that turns about its Y axis.
type spinner struct {
	*geom.Sprite
	spin float32
}

// prepare returns the Sprite.Prepare hook that selects shader and material and uploads camera and lights.
func (g *TestGame) prepare(shader, material string) func(r *renderer.Renderer) error {
	return func(r *renderer.Renderer) error {
		sm := g.SystemManager
		if err := sm.ShaderSystem().Use(shader); err != nil {
			return err
		}
		state := g.State.(*gameState)
		r.SetProjection(state.camera.Projection())
		r.SetView(state.camera.View())
		if err := sm.LightSystem().Apply(); err != nil {
			return err
		}
		return sm.MaterialSystem().Use(material)
	}
}

type gameState struct {
	width  uint32
	height uint32

	camera *components.Camera

	objects []*spinner
}

func NewTestGame(config *engine.ApplicationConfig) *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State: &gameState{
				camera: components.NewCamera(),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnOnRenderError = tg.OnRenderError
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogInfo("initializing testbed...")
	state := g.State.(*gameState)

	quad, err := g.texturedQuad()
	if err != nil {
		return err
	}
	cube, err := g.pickableCube()
	if err != nil {
		return err
	}

	board := geom.NewSprite(-1.5, 0, 0, quad)
	board.Prepare = g.prepare("lit", "checker")
	board.SetOpacity(0.9)

	box := geom.NewSprite(1.5, 0, 0, cube)
	box.Prepare = g.prepare("pick", "red")
	box.UniformScale = 1.2

	state.objects = []*spinner{
		{Sprite: board, spin: 0.3},
		{Sprite: box, spin: 0.8},
	}
	return nil
}

/**
 * @brief A unit quad carrying its tangents in the aTangent user attribute of
 * the lit shader.
 */
func (g *TestGame) texturedQuad() (*geom.Polygon, error) {
	shaders := g.SystemManager.ShaderSystem()
	lit, err := shaders.Get("lit")
	if err != nil {
		return nil, err
	}

	corners := [4][4]float32{
		{-1, -1, 0, 0},
		{1, -1, 1, 0},
		{1, 1, 1, 1},
		{-1, 1, 0, 1},
	}
	vertices := make([]*geom.Vertex, 0, len(corners))
	for _, c := range corners {
		v := geom.NewVertex(c[0], c[1], 0)
		v.SetNormal(0, 0, 1)
		v.SetTexCoords(c[2], c[3])
		v.SetColorRGB(1, 1, 1)
		vertices = append(vertices, v)
	}
	quad, err := geom.NewPolygon(vertices...)
	if err != nil {
		return nil, err
	}
	if !quad.AddQuad(0, 1, 2, 3) {
		return nil, fmt.Errorf("failed to build the quad faces")
	}

	loc := lit.AttributeLocation(tangentAttribute)
	if loc < 0 {
		return nil, fmt.Errorf("shader `%s` does not declare `%s`", lit.Name, tangentAttribute)
	}
	quad.BindTangents(loc)

	if err := g.SystemManager.GeometrySystem().Register(quad, true); err != nil {
		return nil, err
	}
	return quad, nil
}

/**
 * @brief A cube whose faces carry an integer id in the aPick attribute of the
 * pick shader, one id per side.
 */
func (g *TestGame) pickableCube() (*geom.Polygon, error) {
	pick, err := g.SystemManager.ShaderSystem().Get("pick")
	if err != nil {
		return nil, err
	}

	// each side gets its own four vertices so normals and ids stay per side
	sides := [6]struct {
		normal mgl32.Vec3
		u, v   mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
	}

	cube, err := geom.NewPolygon()
	if err != nil {
		return nil, err
	}
	for id, s := range sides {
		base := uint16(cube.VertexCount())
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := s.normal.Mul(0.5).Add(s.u.Mul(c[0] * 0.5)).Add(s.v.Mul(c[1] * 0.5))
			v := geom.NewVertex(p.X(), p.Y(), p.Z())
			v.SetNormal(s.normal.X(), s.normal.Y(), s.normal.Z())
			v.SetTexCoords((c[0]+1)/2, (c[1]+1)/2)
			if err := cube.AddVertex(v); err != nil {
				return nil, err
			}
			if err := v.SetAttribByName(pick, pickAttribute, float64(id)); err != nil {
				return nil, err
			}
		}
		if !cube.AddQuad(base, base+1, base+2, base+3) {
			return nil, fmt.Errorf("failed to build cube side %d", id)
		}
	}
	cube.SetColorHex(0xffd04040, true)

	if err := g.SystemManager.GeometrySystem().Register(cube, true); err != nil {
		return nil, err
	}
	return cube, nil
}

func (g *TestGame) Update(deltaTime float64) error {
	state := g.State.(*gameState)
	state.camera.Orbit(float32(0.2*deltaTime), 0)

	for _, o := range state.objects {
		o.Angles.Y += o.spin * float32(deltaTime)
	}
	return nil
}

// Render swaps the raw polygons for the placed sprites.
func (g *TestGame) Render(packet *renderer.RenderPacket, deltaTime float64) error {
	state := g.State.(*gameState)
	drawables := make([]renderer.Drawable, 0, len(state.objects))
	for _, o := range state.objects {
		drawables = append(drawables, o)
	}
	packet.Drawables = drawables
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	state.camera.SetViewport(width, height)
	return nil
}

// OnRenderError keeps running after a shader reload that broke a draw; everything else stops the engine.
func (g *TestGame) OnRenderError(err error) error {
	var missing *core.MissingAttributeError
	var alignment *core.PipelineAlignmentError
	if errors.As(err, &missing) || errors.As(err, &alignment) {
		core.LogWarn("skipping frame: %s", err)
		return nil
	}
	return err
}

func (g *TestGame) Shutdown() error {
	core.LogInfo("shutting down testbed...")
	state := g.State.(*gameState)
	for _, o := range state.objects {
		o.Destroy()
	}
	state.objects = nil
	return nil
}
