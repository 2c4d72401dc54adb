package testbed

import (
	"fmt"

	"github.com/spaghettifunk/prisma/engine"
	"github.com/spaghettifunk/prisma/engine/assets"
	"github.com/spaghettifunk/prisma/engine/core"
	"github.com/spaghettifunk/prisma/engine/math"
	"github.com/spaghettifunk/prisma/engine/renderer"
	"github.com/spaghettifunk/prisma/engine/renderer/metadata"
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	camera  *renderer.Camera
	objects []*renderer.RenderObject

	width  uint32
	height uint32
}

func NewTestGame(config *engine.ApplicationConfig) (*TestGame, error) {
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &gameState{},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg, nil
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Renderer == nil {
		return fmt.Errorf("the engine is not yet initialized with a renderer")
	}

	state := g.State.(*gameState)

	state.camera = renderer.NewCamera(
		math.NewVec3(0.0, 0.0, -5.0),
		math.NewVec3(0.0, 0.0, 0.0),
		60.0,
		0.1,
		512.0,
	)

	crateA, pixelsA := g.loadTexture("crate01")
	crateB, pixelsB := g.loadTexture("crate02")

	state.objects = []*renderer.RenderObject{
		{
			Name:            "cube-a",
			Position:        math.NewVec3(-2.0, 0.0, 0.0),
			AngularVelocity: math.NewVec3(2.5, 0.0, 0.0),
			Scale:           0.25,
			Texture:         crateA,
			Pixels:          pixelsA,
		},
		{
			Name:            "cube-b",
			Position:        math.NewVec3(1.5, 0.5, 0.0),
			AngularVelocity: math.NewVec3(0.0, 2.0, 0.0),
			Scale:           0.25,
			Texture:         crateB,
			Pixels:          pixelsB,
		},
	}

	return g.Renderer.PrepareScene(state.camera, state.objects)
}

func (g *TestGame) loadTexture(name string) (*metadata.Texture, []uint8) {
	texture, pixels, err := g.Assets.LoadTexture(name)
	if err != nil {
		core.LogWarn("texture '%s' not found, using generated default", name)
		return assets.GenerateDefaultTexture(name)
	}
	return texture, pixels
}

func (g *TestGame) Update(deltaTime float64) error {
	if core.InputIsKeyDown(core.KEY_P) && !core.InputWasKeyDown(core.KEY_P) {
		core.LogDebug("binding calls recorded so far: %d", g.Renderer.PushCalls())
	}
	return nil
}

func (g *TestGame) OnResize(width uint32, height uint32) error {
	state := g.State.(*gameState)
	state.width = width
	state.height = height
	return nil
}

func (g *TestGame) Shutdown() error {
	return nil
}
