//go:build js && wasm

package main

import (
	"encoding/base64"
	"syscall/js"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"gbhost/emu"
	"gbhost/emu/log"
	"gbhost/hw"
	"gbhost/hw/input"
	"gbhost/storage"
)

// game adapts the host loop to ebiten's Update/Draw driver. Update is the
// tick callback; Draw blits whatever the loop presented last.
type game struct {
	loop    *emu.Loop
	display *hw.Display
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return emu.LCDWidth, emu.LCDHeight
}

func (g *game) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.loop.SetPaused(!g.loop.Paused())
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.warn(g.loop.RequestROMLoad())
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.warn(g.loop.RequestStateSave())
	case inpututil.IsKeyJustPressed(ebiten.KeyF7):
		g.warn(g.loop.RequestStateLoad())
	}

	g.loop.Tick()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.display.Draw(screen)
}

func (g *game) warn(err error) {
	if err != nil {
		log.ModHost.WarnZ("request failed").Error("err", err).End()
	}
}

// loadROMHook lets the hosting page feed a base64 ROM directly, bypassing
// the file picker: gbhostLoadROM(btoa(...)).
func loadROMHook(core *emu.Handle) js.Func {
	return js.FuncOf(func(this js.Value, jsargs []js.Value) any {
		if len(jsargs) < 1 {
			return "missing rom argument"
		}
		rom, err := base64.StdEncoding.DecodeString(jsargs[0].String())
		if err != nil {
			return err.Error()
		}
		if err := core.LoadROM(rom); err != nil {
			return err.Error()
		}
		return nil
	})
}

func main() {
	display := hw.NewDisplay()
	ring, err := hw.NewAudioRing()
	if err != nil {
		log.ModHost.FatalZ("audio init failed").Error("err", err).End()
	}

	inputs := input.NewAggregator(input.EbitenKeyboard{}, &input.EbitenGamepads{})
	core := emu.NewHandle(emu.NewPatternMachine())
	loop := emu.NewLoop(core, emu.NewPacer(0), inputs, display, ring, storage.NewBrowser())

	js.Global().Set("gbhostLoadROM", loadROMHook(core))

	ebiten.SetTPS(60)
	ebiten.SetWindowSize(emu.LCDWidth*3, emu.LCDHeight*3)
	ebiten.SetWindowTitle("gbhost")

	if err := ebiten.RunGame(&game{loop: loop, display: display}); err != nil {
		log.ModHost.FatalZ("game loop ended").Error("err", err).End()
	}
}
