package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/gravityhelper/helper"
)

var background = color.RGBA{0x1b, 0x1d, 0x2b, 0xff}

type Game struct {
	frames int
	limit  int

	host *helper.Host
}

// NewGame runs host inside ebiten. A positive limit ends the game after that
// many frames.
func NewGame(host *helper.Host, limit int) *Game {
	return &Game{host: host, limit: limit}
}

func (g *Game) Update() error {
	g.frames++
	if err := g.host.Update(); err != nil {
		return err
	}
	if g.limit > 0 && g.frames >= g.limit {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.host.Draw(screen)

	m := g.host.Module()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.0f  gravity: %s", ebiten.ActualFPS(), m.Controller.Mode()), 4, screen.Bounds().Dy()-16)
}

// Layout keeps the logical screen at the level's size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	lvl := g.host.Module().Level
	if lvl == nil || lvl.Width <= 0 || lvl.Height <= 0 {
		return outsideWidth, outsideHeight
	}
	return int(lvl.Width), int(lvl.Height)
}
