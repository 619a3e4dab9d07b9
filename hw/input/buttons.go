// Package input multiplexes the host's physical input devices (keyboard,
// game controllers) into one snapshot per emulated frame.
package input

// A Button identifies one of the 8 buttons of the Game Boy pad.
type Button byte

const (
	BtnA Button = iota
	BtnB
	BtnSelect
	BtnStart
	BtnUp
	BtnDown
	BtnLeft
	BtnRight

	ButtonCount
)

func (b Button) String() string {
	var names = [ButtonCount]string{
		"A", "B",
		"Select", "Start",
		"Up", "Down", "Left", "Right",
	}
	return names[b]
}

// A Snapshot is the set of buttons asserted at one instant, one bit per
// Button. Snapshots are plain values: built once, never mutated, consumed by
// exactly one core step.
type Snapshot uint8

func (s Snapshot) Pressed(b Button) bool { return s&(1<<b) != 0 }

// Merge returns the per-button logical OR of both snapshots.
func (s Snapshot) Merge(other Snapshot) Snapshot { return s | other }

func (s Snapshot) String() string {
	if s == 0 {
		return "none"
	}
	out := ""
	for b := Button(0); b < ButtonCount; b++ {
		if s.Pressed(b) {
			if out != "" {
				out += "+"
			}
			out += b.String()
		}
	}
	return out
}
