//go:build !js

package input

import (
	"slices"

	"github.com/veandco/go-sdl2/sdl"

	"gbhost/emu/log"
)

// KeyboardSource reads the SDL keyboard state table through a Mapping.
// Non-keyboard codes in the mapping are ignored here; controller codes are
// handled by the pad sources.
type KeyboardSource struct {
	keystate []uint8
	mapping  Mapping
}

func NewKeyboardSource(mapping Mapping) *KeyboardSource {
	// The returned slice is owned by SDL and updated by the event pump, so
	// grabbing it once is enough.
	return &KeyboardSource{
		keystate: sdl.GetKeyboardState(),
		mapping:  mapping,
	}
}

func (k *KeyboardSource) Read() Snapshot {
	var snap Snapshot
	for btn, code := range k.mapping {
		if code.Type != KeyboardControl {
			continue
		}
		if k.keystate[code.Scancode] != 0 {
			snap |= 1 << Button(btn)
		}
	}
	return snap
}

// Gamepads tracks the connected SDL game controllers. UpdateDevices must be
// called for every controller device event to keep the set in sync with
// hot-plugs. All pads share one mapping: its padbtn/padaxis codes override
// the standard layout.
type Gamepads struct {
	pads    map[sdl.JoystickID]*padSource
	mapping Mapping
}

func NewGamepads(mapping Mapping) *Gamepads {
	gp := &Gamepads{
		pads:    make(map[sdl.JoystickID]*padSource),
		mapping: mapping,
	}
	for i := range sdl.NumJoysticks() {
		if sdl.IsGameController(i) {
			gp.open(i)
		}
	}
	return gp
}

func (gp *Gamepads) open(idx int) {
	c := sdl.GameControllerOpen(idx)
	if c == nil {
		return
	}
	id := c.Joystick().InstanceID()
	gp.pads[id] = &padSource{ctrl: c, mapping: gp.mapping}

	log.ModInput.InfoZ("controller connected").
		Int("id", int(id)).
		String("name", c.Name()).
		End()
}

// Pads returns the connected controllers ordered by instance ID, so the
// first returned source is stable for the lifetime of its device.
func (gp *Gamepads) Pads() []Source {
	ids := make([]sdl.JoystickID, 0, len(gp.pads))
	for id := range gp.pads {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	srcs := make([]Source, len(ids))
	for i, id := range ids {
		srcs[i] = gp.pads[id]
	}
	return srcs
}

func (gp *Gamepads) UpdateDevices(e *sdl.ControllerDeviceEvent) {
	switch e.Type {
	case sdl.CONTROLLERDEVICEADDED:
		gp.open(int(e.Which))

	case sdl.CONTROLLERDEVICEREMOVED:
		pad, ok := gp.pads[e.Which]
		if !ok {
			return
		}
		delete(gp.pads, e.Which)
		pad.ctrl.Close()

		log.ModInput.InfoZ("controller disconnected").
			Int("id", int(e.Which)).
			End()
	}
}

func (gp *Gamepads) Close() {
	for id, pad := range gp.pads {
		pad.ctrl.Close()
		delete(gp.pads, id)
	}
}

// padState is the part of sdl.GameController the read path needs.
type padState interface {
	Button(btn sdl.GameControllerButton) byte
	Axis(axis sdl.GameControllerAxis) int16
}

// padSource reads one game controller. Buttons bound to padbtn/padaxis
// codes in the mapping win; a mapping with no pad codes (the default,
// keyboard-only one) falls back to the SDL standard layout.
type padSource struct {
	ctrl    *sdl.GameController
	mapping Mapping
}

func (p *padSource) Read() Snapshot {
	if !p.ctrl.Attached() {
		return 0
	}
	return readPad(p.ctrl, p.mapping)
}

func readPad(pad padState, mapping Mapping) Snapshot {
	if !mapping.hasPadControls() {
		return readStandardLayout(pad)
	}

	var snap Snapshot
	for btn, code := range mapping {
		switch code.Type {
		case PadButtonControl:
			if pad.Button(code.PadButton) != 0 {
				snap |= 1 << Button(btn)
			}
		case PadAxisControl:
			v := pad.Axis(code.PadAxis)
			if code.PadAxisDir >= 0 && v >= axisThreshold ||
				code.PadAxisDir < 0 && v <= -axisThreshold {
				snap |= 1 << Button(btn)
			}
		}
	}
	return snap
}

// readStandardLayout applies the SDL standard layout: B maps to Game Boy A
// and A to Game Boy B so the physical placement matches, the D-pad and the
// left stick both drive the directions.
func readStandardLayout(pad padState) Snapshot {
	var snap Snapshot
	press := func(b Button, on bool) {
		if on {
			snap |= 1 << b
		}
	}

	press(BtnA, pad.Button(sdl.CONTROLLER_BUTTON_B) != 0)
	press(BtnB, pad.Button(sdl.CONTROLLER_BUTTON_A) != 0)
	press(BtnSelect, pad.Button(sdl.CONTROLLER_BUTTON_BACK) != 0)
	press(BtnStart, pad.Button(sdl.CONTROLLER_BUTTON_START) != 0)
	press(BtnUp, pad.Button(sdl.CONTROLLER_BUTTON_DPAD_UP) != 0)
	press(BtnDown, pad.Button(sdl.CONTROLLER_BUTTON_DPAD_DOWN) != 0)
	press(BtnLeft, pad.Button(sdl.CONTROLLER_BUTTON_DPAD_LEFT) != 0)
	press(BtnRight, pad.Button(sdl.CONTROLLER_BUTTON_DPAD_RIGHT) != 0)

	x := pad.Axis(sdl.CONTROLLER_AXIS_LEFTX)
	y := pad.Axis(sdl.CONTROLLER_AXIS_LEFTY)
	press(BtnLeft, x <= -axisThreshold)
	press(BtnRight, x >= axisThreshold)
	press(BtnUp, y <= -axisThreshold)
	press(BtnDown, y >= axisThreshold)

	return snap
}
