package engine

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/spaghettifunk/prisma/engine/assets"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/platform"
	"github.com/spaghettifunk/prisma/engine/renderer"
	"github.com/spaghettifunk/prisma/engine/renderer/vulkan"
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

type Engine struct {
	currentStage Stage
	gameInstance *Game
	// Written by the event goroutine handlers, read by the render loop.
	isRunning   atomic.Bool
	isSuspended atomic.Bool
	platform    *platform.Platform
	assetManager *assets.AssetManager
	renderer     *renderer.Renderer
	width        uint32
	height       uint32
	clock        *core.Clock
	lastTime     float64
	animate      bool
}

func New(g *Game) (*Engine, error) {
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	p, err := platform.New()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	am, err := assets.NewAssetManager()
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	r := renderer.NewRenderer(vulkan.New(p))
	g.Renderer = r
	g.Assets = am

	e := &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		clock:        core.NewClock(),
		platform:     p,
		assetManager: am,
		renderer:     r,
		animate:      true,
		width:        g.ApplicationConfig.StartWidth,
		height:       g.ApplicationConfig.StartHeight,
		lastTime:     0,
	}
	e.isRunning.Store(true)
	return e, nil
}

func (e *Engine) Initialize() error {
	e.currentStage = EngineStageInitializing

	if err := core.InputInitialize(); err != nil {
		return err
	}
	if !core.EventSystemInitialize() {
		return fmt.Errorf("failed to initialize the event system")
	}
	if err := core.MetricsInitialize(); err != nil {
		return err
	}

	core.EventRegister(core.EVENT_CODE_APPLICATION_QUIT, e.onEvent)
	core.EventRegister(core.EVENT_CODE_KEY_PRESSED, e.onKey)
	core.EventRegister(core.EVENT_CODE_RESIZED, e.onResized)

	if err := e.platform.Startup(e.gameInstance.ApplicationConfig.Name,
		e.gameInstance.ApplicationConfig.StartPosX,
		e.gameInstance.ApplicationConfig.StartPosY,
		e.gameInstance.ApplicationConfig.StartWidth,
		e.gameInstance.ApplicationConfig.StartHeight); err != nil {
		return err
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if err := e.assetManager.Initialize(fmt.Sprintf("%s/assets", wd)); err != nil {
		return err
	}

	if err := e.renderer.Initialize(e.gameInstance.ApplicationConfig.Name, e.width, e.height); err != nil {
		return err
	}

	// The game prepares its scene here.
	if err := e.gameInstance.FnInitialize(); err != nil {
		return err
	}
	if err := e.gameInstance.FnOnResize(e.width, e.height); err != nil {
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) Run() error {
	e.currentStage = EngineStageRunning

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	// start goroutine to process all the events around the engine
	go core.ProcessEvents()

	var timeSinceMetricsLog float64 = 0.0

	for e.isRunning.Load() {
		e.platform.PumpMessages()
		if e.platform.ShouldClose() {
			e.isRunning.Store(false)
			break
		}

		if e.isSuspended.Load() {
			continue
		}

		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime

		if err := e.gameInstance.FnUpdate(delta); err != nil {
			core.LogError("game update failed, shutting down: %s", err)
			e.isRunning.Store(false)
			break
		}

		if err := e.renderer.DrawFrame(delta); err != nil {
			core.LogError("frame draw failed, shutting down: %s", err)
			e.isRunning.Store(false)
			break
		}

		e.clock.Update()
		core.MetricsUpdate(e.clock.Elapsed() - currentTime)

		timeSinceMetricsLog += delta
		if timeSinceMetricsLog >= 1.0 {
			fps, frameTime := core.MetricsFrame()
			core.LogInfo("FPS: %5.1f (%4.2fms)", fps, frameTime)
			timeSinceMetricsLog = 0.0
		}

		// Input state copying happens after everything recorded its input.
		core.InputUpdate(delta)

		e.lastTime = currentTime
	}

	return e.Shutdown()
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown

	if err := e.gameInstance.FnShutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.renderer.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.assetManager.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if err := core.EventSystemShutdown(); err != nil {
		return err
	}
	if err := core.InputShutdown(); err != nil {
		return err
	}
	return e.platform.Shutdown()
}

// GetFramebufferSize returns the width and height (in this order) of the
// application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(context core.EventContext) {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.isRunning.Store(false)
	}
}

func (e *Engine) onKey(context core.EventContext) {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	switch ke.KeyCode {
	case core.KEY_ESCAPE:
		// Technically firing an event to itself, but there may be other listeners.
		core.EventFire(core.EventContext{
			Type: core.EVENT_CODE_APPLICATION_QUIT,
		})
	case core.KEY_SPACE:
		paused := e.renderer.TogglePause()
		core.LogInfo("animation paused: %t", paused)
	case core.KEY_A:
		e.animate = !e.animate
		e.renderer.SetAnimate(e.animate)
		core.LogInfo("animation enabled: %t", e.animate)
	}
}

func (e *Engine) onResized(context core.EventContext) {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return
	}

	width := se.WindowWidth
	height := se.WindowHeight
	if width == e.width && height == e.height {
		return
	}
	e.width = width
	e.height = height

	core.LogDebug("Window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, suspending application.")
		e.isSuspended.Store(true)
		return
	}
	if e.isSuspended.Load() {
		core.LogInfo("Window restored, resuming application.")
		e.isSuspended.Store(false)
	}

	if err := e.gameInstance.FnOnResize(width, height); err != nil {
		core.LogError(err.Error())
	}
	if err := e.renderer.OnResize(uint16(width), uint16(height)); err != nil {
		core.LogError(err.Error())
	}
}
