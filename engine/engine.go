package engine

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spaghettifunk/lumen/engine/assets"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/platform"
	"github.com/spaghettifunk/lumen/engine/renderer"
	"github.com/spaghettifunk/lumen/engine/renderer/opengl"
	"github.com/spaghettifunk/lumen/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const eventQueueSize = 256

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	isRunning     bool
	isSuspended   bool
	events        *core.EventSystem
	platform      *platform.Platform
	renderer      *renderer.Renderer
	assetManager  *assets.AssetManager
	systemManager *systems.SystemManager
	width         uint32
	height        uint32
	clock         *core.Clock
	metrics       *core.Metrics
	lastTime      float64
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, errors.New("game and its application config are required")
	}
	if err := g.ApplicationConfig.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	events := core.NewEventSystem(eventQueueSize)
	r := renderer.New(opengl.New())
	am := assets.NewAssetManager(events)

	sm, err := systems.NewSystemManager(r, am, events)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		events:        events,
		platform:      platform.New(events),
		renderer:      r,
		assetManager:  am,
		systemManager: sm,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		isRunning:     true,
		isSuspended:   false,
		width:         g.ApplicationConfig.Window.StartWidth,
		height:        g.ApplicationConfig.Window.StartHeight,
	}, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing
	config := e.gameInstance.ApplicationConfig

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)

	if err := e.platform.Startup(config.Name,
		config.Window.StartPosX,
		config.Window.StartPosY,
		config.Window.StartWidth,
		config.Window.StartHeight); err != nil {
		return err
	}
	// HiDPI displays report a framebuffer bigger than the window
	e.width, e.height = e.platform.FramebufferSize()

	if err := e.renderer.Initialize(config.Name, e.width, e.height); err != nil {
		return fmt.Errorf("failed to initialize the renderer: %w", err)
	}

	assetsDir, err := filepath.Abs(config.AssetsDir)
	if err != nil {
		return err
	}
	if err := e.assetManager.Initialize(assetsDir, config.HotReload); err != nil {
		return err
	}

	if err := e.systemManager.Initialize(&systems.SystemManagerConfig{
		Shaders:       config.Shaders,
		Materials:     config.Materials,
		Lights:        config.Lights,
		Fog:           config.Fog,
		DefaultShader: config.DefaultShader,
	}); err != nil {
		return err
	}

	e.gameInstance.SystemManager = e.systemManager
	e.gameInstance.Renderer = e.renderer

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine must be initialized before running")
	}
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	var targetFrameSeconds float64
	if fps := e.gameInstance.ApplicationConfig.TargetFPS; fps > 0 {
		targetFrameSeconds = 1.0 / float64(fps)
	}
	var sinceReport float64

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
		}
		// window callbacks and file watchers only post, everything runs here
		e.events.Drain()

		if e.isSuspended || !e.isRunning {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		frameStartTime := platform.GetAbsoluteTime()

		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				e.isRunning = false
				return err
			}
		}

		packet := &renderer.RenderPacket{
			DeltaTime: delta,
			Drawables: e.systemManager.GeometrySystem().Drawables(),
		}
		if e.gameInstance.FnRender != nil {
			if err := e.gameInstance.FnRender(packet, delta); err != nil {
				core.LogError("game render failed, shutting down: %s", err)
				e.isRunning = false
				return err
			}
		}

		if err := e.renderer.DrawFrame(packet); err != nil {
			if err := e.onRenderError(err); err != nil {
				e.isRunning = false
				return err
			}
		}
		e.platform.SwapBuffers()

		frameElapsedTime := platform.GetAbsoluteTime() - frameStartTime
		e.metrics.Update(frameElapsedTime)
		sinceReport += delta
		if sinceReport >= 1.0 {
			fps, frameTime := e.metrics.Frame()
			core.LogDebug("frame %d: %.1f fps, %.3f ms", e.renderer.FrameNumber(), fps, frameTime)
			sinceReport = 0
		}

		if targetFrameSeconds > 0 {
			// give the rest of the frame back to the OS, keeping a millisecond of slack
			if remainingMS := (targetFrameSeconds - frameElapsedTime) * 1000; remainingMS > 1 {
				e.platform.Sleep(remainingMS - 1)
			}
		}

		e.lastTime = currentTime
	}

	return nil
}

func (e *Engine) onRenderError(err error) error {
	core.LogError("frame %d failed: %s", e.renderer.FrameNumber(), err)
	if e.gameInstance.FnOnRenderError == nil {
		return err
	}
	return e.gameInstance.FnOnRenderError(err)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	var errs []error
	if e.gameInstance.FnShutdown != nil {
		errs = append(errs, e.gameInstance.FnShutdown())
	}
	errs = append(errs, e.systemManager.Shutdown())
	errs = append(errs, e.assetManager.Shutdown())
	errs = append(errs, e.renderer.Shutdown())
	e.events.Shutdown()
	errs = append(errs, e.platform.Shutdown())
	e.currentStage = EngineStageUninitialized
	return errors.Join(errs...)
}

// Quit asks the main loop to stop after the current frame. Safe from any goroutine.
func (e *Engine) Quit() {
	if err := e.events.Post(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT, Sender: e}); err != nil {
		core.LogWarn("failed to post quit event: %s", err)
	}
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext, listener interface{}) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext, listener interface{}) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application.")
		e.isSuspended = true
		return true
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application.")
		e.isSuspended = false
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize failed: %s", err)
		}
	}
	if err := e.renderer.OnResize(width, height); err != nil {
		core.LogError("renderer resize failed: %s", err)
	}
	// Not handled, other listeners may care.
	return false
}
