//go:build !js

package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

type ControlType uint8

const (
	UnsetControl ControlType = iota
	KeyboardControl
	PadButtonControl
	PadAxisControl
)

func (t ControlType) String() string {
	switch t {
	case KeyboardControl:
		return "key"
	case PadButtonControl:
		return "pad button"
	case PadAxisControl:
		return "pad axis"
	}
	return "not set"
}

// Threshold above which a joystick axis counts as 'pressed'.
// Axis range is -32768 to 32767.
const axisThreshold = 32000

// A Code binds one Game Boy button to a host control: a keyboard scancode or
// a game controller button/axis. Only the fields for the active Type are
// meaningful. Codes marshal to a small text form so they can live in the
// TOML config file.
type Code struct {
	Scancode sdl.Scancode

	PadButton  sdl.GameControllerButton
	PadAxis    sdl.GameControllerAxis
	PadAxisDir int16

	Type ControlType
}

// Name returns an user-friendly name for the code.
func (c Code) Name() string {
	switch c.Type {
	case KeyboardControl:
		return sdl.GetScancodeName(c.Scancode)
	case PadButtonControl:
		return sdl.GameControllerGetStringForButton(c.PadButton)
	case PadAxisControl:
		axis := sdl.GameControllerGetStringForAxis(c.PadAxis)
		if c.PadAxisDir >= 0 {
			return axis + "+"
		}
		return axis + "-"
	}
	return ""
}

func (c Code) MarshalText() ([]byte, error) {
	s := ""
	switch c.Type {
	case KeyboardControl:
		s = fmt.Sprintf("key %s", c.Name())
	case PadButtonControl:
		s = fmt.Sprintf("padbtn %s", c.Name())
	case PadAxisControl:
		s = fmt.Sprintf("padaxis %s", c.Name())
	}
	return []byte(s), nil
}

func (c *Code) UnmarshalText(text []byte) error {
	s := string(text)

	switch {
	case s == "":
		c.Type = UnsetControl

	case strings.HasPrefix(s, "padbtn"):
		str := ""
		if _, err := fmt.Sscanf(s, "padbtn %s", &str); err != nil {
			return fmt.Errorf("malformed padbtn code: %s", s)
		}
		c.PadButton = sdl.GameControllerGetButtonFromString(str)
		if c.PadButton == sdl.CONTROLLER_BUTTON_INVALID {
			return fmt.Errorf("unrecognized button %q", str)
		}
		c.Type = PadButtonControl

	case strings.HasPrefix(s, "padaxis"):
		str := ""
		if _, err := fmt.Sscanf(s, "padaxis %s", &str); err != nil {
			return fmt.Errorf("malformed padaxis code: %s", s)
		}
		switch {
		case strings.HasSuffix(str, "+"):
			c.PadAxisDir = 1
		case strings.HasSuffix(str, "-"):
			c.PadAxisDir = -1
		default:
			return fmt.Errorf("malformed axis direction: %s", str)
		}
		c.PadAxis = sdl.GameControllerGetAxisFromString(str[:len(str)-1])
		if c.PadAxis == sdl.CONTROLLER_AXIS_INVALID {
			return fmt.Errorf("unrecognized axis %q", str)
		}
		c.Type = PadAxisControl

	case strings.HasPrefix(s, "key"):
		str := ""
		if _, err := fmt.Sscanf(s, "key %s", &str); err != nil {
			return fmt.Errorf("malformed key code: %s", s)
		}
		c.Scancode = sdl.GetScancodeFromName(str)
		if c.Scancode == sdl.SCANCODE_UNKNOWN {
			return fmt.Errorf("unrecognized scancode %q", s)
		}
		c.Type = KeyboardControl

	default:
		return fmt.Errorf("unrecognized input code: %s", s)
	}

	return nil
}

// A Mapping assigns a host control to each Game Boy button.
type Mapping [ButtonCount]Code

// hasPadControls reports whether any button is bound to a game controller
// button or axis.
func (m Mapping) hasPadControls() bool {
	for _, c := range m {
		if c.Type == PadButtonControl || c.Type == PadAxisControl {
			return true
		}
	}
	return false
}

// DefaultMapping is the keyboard layout used when the config file carries no
// input section.
func DefaultMapping() Mapping {
	return Mapping{
		BtnA:      {Scancode: sdl.SCANCODE_X, Type: KeyboardControl},
		BtnB:      {Scancode: sdl.SCANCODE_Z, Type: KeyboardControl},
		BtnSelect: {Scancode: sdl.SCANCODE_RSHIFT, Type: KeyboardControl},
		BtnStart:  {Scancode: sdl.SCANCODE_RETURN, Type: KeyboardControl},
		BtnUp:     {Scancode: sdl.SCANCODE_UP, Type: KeyboardControl},
		BtnDown:   {Scancode: sdl.SCANCODE_DOWN, Type: KeyboardControl},
		BtnLeft:   {Scancode: sdl.SCANCODE_LEFT, Type: KeyboardControl},
		BtnRight:  {Scancode: sdl.SCANCODE_RIGHT, Type: KeyboardControl},
	}
}
