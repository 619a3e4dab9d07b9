//go:build !js

// Package hw drives the host's audio/video devices and the window event
// pump. The native build renders through SDL2; the browser build renders
// through ebiten. Both expose the same sink surface to the host loop.
package hw

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"gbhost/emu"
	"gbhost/emu/log"
)

// Screen is the native video sink: an SDL window with a streaming texture
// the size of the emulated LCD, scaled up by the renderer.
type Screen struct {
	win      *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
}

// NewScreen initializes SDL and opens the window. Scale multiplies the LCD
// resolution; vsync ties Present to the display refresh.
func NewScreen(title string, scale int, vsync bool) (*Screen, error) {
	if scale < 1 {
		scale = 1
	}
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_GAMECONTROLLER); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}

	win, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(emu.LCDWidth*scale), int32(emu.LCDHeight*scale),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	flags := uint32(sdl.RENDERER_ACCELERATED)
	if vsync {
		flags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(win, -1, flags)
	if err != nil {
		win.Destroy()
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	renderer.SetLogicalSize(emu.LCDWidth, emu.LCDHeight)

	// ABGR8888 matches the core's RGBA byte order on little-endian hosts.
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		emu.LCDWidth, emu.LCDHeight)
	if err != nil {
		renderer.Destroy()
		win.Destroy()
		return nil, fmt.Errorf("create texture: %w", err)
	}

	log.ModVideo.InfoZ("window created").
		Int("scale", scale).
		Bool("vsync", vsync).
		End()

	return &Screen{win: win, renderer: renderer, texture: texture}, nil
}

// Present uploads one RGBA framebuffer and flips.
func (s *Screen) Present(fb []byte) {
	if err := s.texture.Update(nil, fb, emu.LCDWidth*4); err != nil {
		log.ModVideo.WarnZ("texture update failed").Error("err", err).End()
		return
	}
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

func (s *Screen) SetTitle(title string) {
	s.win.SetTitle(title)
}

func (s *Screen) Close() {
	s.texture.Destroy()
	s.renderer.Destroy()
	s.win.Destroy()
	sdl.Quit()
}
