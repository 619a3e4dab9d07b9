package emu

import (
	"gbhost/emu/log"
	"gbhost/hw/input"
)

// Display and audio geometry of the emulated machine.
const (
	LCDWidth  = 160
	LCDHeight = 144

	// SampleRate is the rate of the PCM chunks produced by the core, in Hz.
	// Sinks resample to whatever the host device wants.
	SampleRate = 32768
)

// Machine is the contract an emulation core implements. The host never
// reaches into the core: it steps it one frame at a time and treats video,
// audio and state as produced artifacts.
//
// A core must be deterministic: same state plus same inputs yields the same
// frame, with no wall-clock reads inside. That determinism is what makes
// save-state round-trips exact.
type Machine interface {
	// Reset loads a ROM image and restarts the machine from power-on.
	Reset(rom []byte) error

	// RunFrame advances the machine by exactly one video frame with the
	// given pad state. An error means a core invariant is broken and the
	// machine must not be stepped again.
	RunFrame(snap input.Snapshot) error

	// VideoBuffer returns the RGBA framebuffer (LCDWidth*LCDHeight*4) of
	// the last frame. Valid only until the next RunFrame.
	VideoBuffer() []byte

	// AudioBuffer returns the interleaved stereo samples of the last frame
	// at SampleRate. Valid only until the next RunFrame.
	AudioBuffer() []int16

	// SaveState serializes the complete machine state.
	SaveState() ([]byte, error)

	// LoadState restores a previously serialized state. On error the
	// machine may be left in an undefined state; Handle wraps this with
	// the all-or-nothing guarantee.
	LoadState(data []byte) error
}

// Handle owns a Machine on behalf of the host loop: it validates ROMs before
// handing them over, enforces all-or-nothing state loads, and latches the
// fatal condition after a failed step. All access to the machine goes
// through here, on the loop's single thread of control.
type Handle struct {
	m      Machine
	header *Header
	loaded bool
	halted bool
}

func NewHandle(m Machine) *Handle {
	return &Handle{m: m}
}

// Loaded reports whether a ROM has been accepted since creation.
func (h *Handle) Loaded() bool { return h.loaded }

// Halted reports whether a step failed, which ends the session: the machine
// state can no longer be trusted.
func (h *Handle) Halted() bool { return h.halted }

// Header returns the header of the loaded ROM, or nil.
func (h *Handle) Header() *Header { return h.header }

// LoadROM validates the image and resets the machine with it. Validation
// failures leave the previously loaded ROM (if any) running.
func (h *Handle) LoadROM(rom []byte) error {
	hdr, err := ParseHeader(rom)
	if err != nil {
		return err
	}
	if err := h.m.Reset(rom); err != nil {
		return romErrorf("core rejected image: %v", err)
	}

	h.header = hdr
	h.loaded = true
	h.halted = false

	log.ModCore.InfoZ("rom loaded").
		String("title", hdr.Title).
		String("type", hdr.CartTypeString()).
		Int("size", len(rom)).
		End()
	return nil
}

// Step advances the machine one frame. The returned buffers are owned by
// the machine and valid only until the next Step.
func (h *Handle) Step(snap input.Snapshot) (video []byte, audio []int16, err error) {
	if err := h.m.RunFrame(snap); err != nil {
		h.halted = true
		return nil, nil, err
	}
	return h.m.VideoBuffer(), h.m.AudioBuffer(), nil
}

func (h *Handle) SaveState() ([]byte, error) {
	blob, err := h.m.SaveState()
	if err != nil {
		return nil, &StateError{Err: err}
	}
	return blob, nil
}

// LoadState restores a state blob, all or nothing: on failure the machine
// is rolled back to the state it had before the call.
func (h *Handle) LoadState(blob []byte) error {
	prior, err := h.m.SaveState()
	if err != nil {
		return &StateError{Err: err}
	}
	if err := h.m.LoadState(blob); err != nil {
		if rberr := h.m.LoadState(prior); rberr != nil {
			// Rollback of a state we just serialized cannot fail on a sane
			// core; if it does the session is over.
			h.halted = true
			log.ModCore.ErrorZ("state rollback failed").Error("err", rberr).End()
		}
		return &StateError{Err: err}
	}
	return nil
}
