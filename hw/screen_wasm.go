//go:build js && wasm

// Package hw drives the host's audio/video devices. The browser build
// renders through ebiten; the native build through SDL2. Both expose the
// same sink surface to the host loop.
package hw

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"gbhost/emu"
)

// Display is the browser video sink. Present stores the latest framebuffer;
// Draw, called by ebiten, uploads it. Ebiten handles the scaling from LCD
// resolution to canvas size.
type Display struct {
	mu sync.Mutex
	fb []byte
}

func NewDisplay() *Display {
	return &Display{fb: make([]byte, emu.LCDWidth*emu.LCDHeight*4)}
}

func (d *Display) Present(fb []byte) {
	d.mu.Lock()
	copy(d.fb, fb)
	d.mu.Unlock()
}

// Draw uploads the last presented framebuffer to the ebiten screen. The
// screen image is LCD-sized, see Layout.
func (d *Display) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	screen.WritePixels(d.fb)
	d.mu.Unlock()
}
