//go:build !js

package hw

import (
	"github.com/veandco/go-sdl2/sdl"

	"gbhost/hw/input"
)

// Command is a host-level action requested through the window: quitting,
// pausing, or triggering one of the storage operations. Pad buttons never
// produce commands; they only feed the input snapshot.
type Command uint8

const (
	CmdQuit Command = iota
	CmdTogglePause
	CmdOpenROM
	CmdSaveState
	CmdLoadState
)

// PollCommands drains the SDL event queue: controller hot-plug events go to
// the pad set, shortcut keys become commands. Called once per tick, before
// stepping, so a command takes effect on the tick it was typed.
func PollCommands(pads *input.Gamepads) []Command {
	var cmds []Command
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			cmds = append(cmds, CmdQuit)

		case *sdl.ControllerDeviceEvent:
			if pads != nil {
				pads.UpdateDevices(e)
			}

		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN || e.Repeat != 0 {
				continue
			}
			switch e.Keysym.Sym {
			case sdl.K_ESCAPE:
				cmds = append(cmds, CmdQuit)
			case sdl.K_p:
				cmds = append(cmds, CmdTogglePause)
			case sdl.K_o:
				cmds = append(cmds, CmdOpenROM)
			case sdl.K_F5:
				cmds = append(cmds, CmdSaveState)
			case sdl.K_F7:
				cmds = append(cmds, CmdLoadState)
			}
		}
	}
	return cmds
}
