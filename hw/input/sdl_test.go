//go:build !js

package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

type fakePad struct {
	buttons map[sdl.GameControllerButton]bool
	axes    map[sdl.GameControllerAxis]int16
}

func (p *fakePad) Button(b sdl.GameControllerButton) byte {
	if p.buttons[b] {
		return 1
	}
	return 0
}

func (p *fakePad) Axis(a sdl.GameControllerAxis) int16 { return p.axes[a] }

func TestReadPadMappedButtons(t *testing.T) {
	// A mapping that binds Game Boy A to the controller's physical A
	// button, overriding the standard layout (which would put it on B).
	mapping := DefaultMapping()
	mapping[BtnA] = Code{Type: PadButtonControl, PadButton: sdl.CONTROLLER_BUTTON_A}
	mapping[BtnStart] = Code{Type: PadButtonControl, PadButton: sdl.CONTROLLER_BUTTON_GUIDE}

	pad := &fakePad{buttons: map[sdl.GameControllerButton]bool{
		sdl.CONTROLLER_BUTTON_A:     true,
		sdl.CONTROLLER_BUTTON_GUIDE: true,
	}}

	want := Snapshot(1<<BtnA | 1<<BtnStart)
	if got := readPad(pad, mapping); got != want {
		t.Errorf("readPad() = %v, want %v", got, want)
	}

	// The same physical press under the standard layout reads as Game
	// Boy B: the mapping must win, not the hardcoded layout.
	if got := readStandardLayout(pad); got != 1<<BtnB {
		t.Errorf("readStandardLayout() = %v, want %v", got, Snapshot(1<<BtnB))
	}
}

func TestReadPadMappedAxis(t *testing.T) {
	mapping := DefaultMapping()
	mapping[BtnLeft] = Code{Type: PadAxisControl, PadAxis: sdl.CONTROLLER_AXIS_LEFTX, PadAxisDir: -1}
	mapping[BtnRight] = Code{Type: PadAxisControl, PadAxis: sdl.CONTROLLER_AXIS_LEFTX, PadAxisDir: 1}

	tests := []struct {
		name string
		x    int16
		want Snapshot
	}{
		{"centered", 0, 0},
		{"below threshold", axisThreshold - 1, 0},
		{"pushed right", axisThreshold, 1 << BtnRight},
		{"pushed left", -axisThreshold, 1 << BtnLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pad := &fakePad{axes: map[sdl.GameControllerAxis]int16{
				sdl.CONTROLLER_AXIS_LEFTX: tt.x,
			}}
			if got := readPad(pad, mapping); got != tt.want {
				t.Errorf("readPad() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadPadStandardLayoutFallback(t *testing.T) {
	// The default mapping binds only keyboard codes, so pads keep the
	// standard layout: physical B is Game Boy A, the stick steers.
	pad := &fakePad{
		buttons: map[sdl.GameControllerButton]bool{
			sdl.CONTROLLER_BUTTON_B:       true,
			sdl.CONTROLLER_BUTTON_DPAD_UP: true,
		},
		axes: map[sdl.GameControllerAxis]int16{
			sdl.CONTROLLER_AXIS_LEFTX: -axisThreshold,
		},
	}

	want := Snapshot(1<<BtnA | 1<<BtnUp | 1<<BtnLeft)
	if got := readPad(pad, DefaultMapping()); got != want {
		t.Errorf("readPad() = %v, want %v", got, want)
	}
}
