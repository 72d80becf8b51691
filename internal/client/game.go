// Package client presents a session in an ebiten window.
package client

import (
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"arena-shooter/internal/game"
)

// Session is the part of *game.Loop the window drives
type Session interface {
	Start() bool
	Stop()
	Stopped() bool
	Tick(in game.Input)
	Draw()
}

// Frame is the rendered surface the session draws into
type Frame interface {
	Pixels() []byte
}

// Game adapts a session to ebiten.Game
type Game struct {
	session Session
	frame   Frame
	sampler *Sampler
	width   int
	height  int

	// OnRender observes how long each Draw took. Optional.
	OnRender func(time.Duration)
}

// New creates the window adapter. frame must be width x height RGBA.
func New(session Session, frame Frame, width, height int) *Game {
	return &Game{
		session: session,
		frame:   frame,
		sampler: NewSampler(&ebitenDevices{}),
		width:   width,
		height:  height,
	}
}

// Update samples input and advances the session one tick
func (g *Game) Update() error {
	in, cmd := g.sampler.Sample()
	return g.update(in, cmd)
}

func (g *Game) update(in game.Input, cmd Commands) error {
	if cmd.Quit {
		g.session.Stop()
	}
	if g.session.Stopped() {
		return ebiten.Termination
	}
	if cmd.Start {
		g.session.Start()
	}
	g.session.Tick(in)
	return nil
}

// Draw renders the latest snapshot and copies it to the screen
func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	g.session.Draw()

	pix := g.frame.Pixels()
	if len(pix) != 4*g.width*g.height {
		log.Printf("⚠️ Frame size mismatch: %d bytes for %dx%d", len(pix), g.width, g.height)
		return
	}
	screen.WritePixels(pix)

	if g.OnRender != nil {
		g.OnRender(time.Since(start))
	}
}

// Layout keeps the logical screen at the playfield size; ebiten scales it
// to the window.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// Run opens the window and blocks until it closes or the session stops
func Run(g *Game, title string, scale, tps int, vsync bool) error {
	if scale < 1 {
		scale = 1
	}
	ebiten.SetWindowSize(g.width*scale, g.height*scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(tps)
	ebiten.SetVsyncEnabled(vsync)

	err := ebiten.RunGame(g)
	g.session.Stop()
	return err
}
