package emu

import (
	"fmt"

	"github.com/go-faster/jx"

	"gbhost/hw/input"
)

// Machine timing constants used by the built-in core: the DMG master clock,
// clocks per frame, and clocks per audio sample at SampleRate.
const (
	clocksPerFrame  = 70224
	clocksPerSample = 4194304 / SampleRate // 128
)

// PatternMachine is a stand-in core: a deterministic test-card generator
// implementing the full Machine contract. It scrolls a checker pattern under
// d-pad control and hums a square wave whose pitch follows the face buttons.
// It exists so the host shell can be exercised end to end, core or no core,
// and so tests have a machine with exact, repeatable behavior.
type PatternMachine struct {
	rom []byte

	frame  uint32
	scrX   uint8
	scrY   uint8
	phase uint32 // square wave phase accumulator, 16.16 fixed point
	carry int    // clock remainder carried between frames

	video []byte
	audio []int16
}

func NewPatternMachine() *PatternMachine {
	return &PatternMachine{
		video: make([]byte, LCDWidth*LCDHeight*4),
		audio: make([]int16, 0, 2*(clocksPerFrame/clocksPerSample+1)),
	}
}

func (p *PatternMachine) Reset(rom []byte) error {
	p.rom = rom
	p.frame = 0
	p.scrX = 0
	p.scrY = 0
	p.phase = 0
	p.carry = 0
	return nil
}

func (p *PatternMachine) RunFrame(snap input.Snapshot) error {
	p.frame++

	if snap.Pressed(input.BtnLeft) {
		p.scrX--
	}
	if snap.Pressed(input.BtnRight) {
		p.scrX++
	}
	if snap.Pressed(input.BtnUp) {
		p.scrY--
	}
	if snap.Pressed(input.BtnDown) {
		p.scrY++
	}

	p.renderVideo()
	p.renderAudio(snap)
	return nil
}

func (p *PatternMachine) renderVideo() {
	i := 0
	for y := 0; y < LCDHeight; y++ {
		for x := 0; x < LCDWidth; x++ {
			cx := uint8(x) + p.scrX
			cy := uint8(y) + p.scrY
			var shade byte = 0x20
			if (cx/8+cy/8)%2 == 0 {
				shade = 0xd0
			}
			p.video[i+0] = shade
			p.video[i+1] = shade
			p.video[i+2] = byte(p.frame) // slow hue drift, proves frames advance
			p.video[i+3] = 0xff
			i += 4
		}
	}
}

func (p *PatternMachine) renderAudio(snap input.Snapshot) {
	// Integer clock accounting keeps the per-frame sample count exact:
	// 70224 clocks yield 548 or 549 samples depending on the carry.
	n := (p.carry + clocksPerFrame) / clocksPerSample
	p.carry = (p.carry + clocksPerFrame) % clocksPerSample

	// 220 Hz hum, one octave up while A is held, silent on B.
	step := uint32(220 * 65536 / SampleRate)
	if snap.Pressed(input.BtnA) {
		step *= 2
	}
	var vol int16 = 0x0c00
	if snap.Pressed(input.BtnB) {
		vol = 0
	}

	p.audio = p.audio[:0]
	for range n {
		p.phase += step
		var s int16
		if p.phase&0x8000 != 0 {
			s = vol
		} else {
			s = -vol
		}
		p.audio = append(p.audio, s, s)
	}
}

func (p *PatternMachine) VideoBuffer() []byte  { return p.video }
func (p *PatternMachine) AudioBuffer() []int16 { return p.audio }

func (p *PatternMachine) SaveState() ([]byte, error) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("frame", func(e *jx.Encoder) { e.UInt32(p.frame) })
		e.Field("scrx", func(e *jx.Encoder) { e.UInt32(uint32(p.scrX)) })
		e.Field("scry", func(e *jx.Encoder) { e.UInt32(uint32(p.scrY)) })
		e.Field("phase", func(e *jx.Encoder) { e.UInt32(p.phase) })
		e.Field("carry", func(e *jx.Encoder) { e.Int(p.carry) })
	})
	return e.Bytes(), nil
}

func (p *PatternMachine) LoadState(data []byte) error {
	var (
		frame, phase uint32
		scrX, scrY   uint8
		carry        int
		seen         int
	)
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "frame":
			frame, err = d.UInt32()
		case "scrx":
			var v uint32
			v, err = d.UInt32()
			scrX = uint8(v)
		case "scry":
			var v uint32
			v, err = d.UInt32()
			scrY = uint8(v)
		case "phase":
			phase, err = d.UInt32()
		case "carry":
			carry, err = d.Int()
		default:
			return d.Skip()
		}
		seen++
		return err
	})
	if err != nil {
		return err
	}
	if seen < 5 {
		return fmt.Errorf("state blob incomplete: %d of 5 fields", seen)
	}

	p.frame = frame
	p.scrX = scrX
	p.scrY = scrY
	p.phase = phase
	p.carry = carry
	p.renderVideo()
	return nil
}
