//go:build js && wasm

package input

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Browser keyboard layout, fixed: there is no config file in the sandbox.
var ebitenKeymap = map[ebiten.Key]Button{
	ebiten.KeyX:          BtnA,
	ebiten.KeyZ:          BtnB,
	ebiten.KeyShiftRight: BtnSelect,
	ebiten.KeyEnter:      BtnStart,
	ebiten.KeyArrowUp:    BtnUp,
	ebiten.KeyArrowDown:  BtnDown,
	ebiten.KeyArrowLeft:  BtnLeft,
	ebiten.KeyArrowRight: BtnRight,
}

// EbitenKeyboard polls ebiten's key state table.
type EbitenKeyboard struct{}

func (EbitenKeyboard) Read() Snapshot {
	var snap Snapshot
	for key, btn := range ebitenKeymap {
		if ebiten.IsKeyPressed(key) {
			snap |= 1 << btn
		}
	}
	return snap
}

// EbitenGamepads enumerates the browser's connected gamepads through
// ebiten's standard layout. The slice of IDs is re-queried on every call so
// hot-plugs are picked up without explicit events.
type EbitenGamepads struct {
	ids []ebiten.GamepadID
}

func (g *EbitenGamepads) Pads() []Source {
	g.ids = ebiten.AppendGamepadIDs(g.ids[:0])
	srcs := make([]Source, 0, len(g.ids))
	for _, id := range g.ids {
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			srcs = append(srcs, ebitenPad(id))
		}
	}
	return srcs
}

type ebitenPad ebiten.GamepadID

func (p ebitenPad) Read() Snapshot {
	id := ebiten.GamepadID(p)

	var snap Snapshot
	press := func(b Button, sb ebiten.StandardGamepadButton) {
		if ebiten.IsStandardGamepadButtonPressed(id, sb) {
			snap |= 1 << b
		}
	}

	press(BtnA, ebiten.StandardGamepadButtonRightRight)
	press(BtnB, ebiten.StandardGamepadButtonRightBottom)
	press(BtnSelect, ebiten.StandardGamepadButtonCenterLeft)
	press(BtnStart, ebiten.StandardGamepadButtonCenterRight)
	press(BtnUp, ebiten.StandardGamepadButtonLeftTop)
	press(BtnDown, ebiten.StandardGamepadButtonLeftBottom)
	press(BtnLeft, ebiten.StandardGamepadButtonLeftLeft)
	press(BtnRight, ebiten.StandardGamepadButtonLeftRight)

	return snap
}
