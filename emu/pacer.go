package emu

import (
	"time"

	"gbhost/emu/log"
)

// FrameRate is the DMG video refresh rate: 4194304 Hz master clock, 70224
// clocks per frame.
const FrameRate = 4194304.0 / 70224.0

// FramePeriod is the wall-clock duration of one emulated frame.
var framePeriodSeconds = float64(time.Second) / FrameRate
var FramePeriod = time.Duration(framePeriodSeconds)

// DefaultCatchUpCap bounds how many frames a single host tick may run after
// a stall. Beyond it the emulator permanently drops the owed time: a short
// controlled slip beats freezing the UI in a catch-up sprint.
const DefaultCatchUpCap = 10

// Pacer converts wall-clock progress into a number of emulated frames owed,
// carrying fractional debt between ticks. All clock state is instance data,
// so independent sessions (and tests, which inject their own clock) do not
// interfere.
type Pacer struct {
	now        func() time.Time
	prev       time.Time
	debt       float64
	catchUpCap int
	paused     bool
}

func NewPacer(catchUpCap int) *Pacer {
	if catchUpCap <= 0 {
		catchUpCap = DefaultCatchUpCap
	}
	p := &Pacer{
		now:        time.Now,
		catchUpCap: catchUpCap,
	}
	p.prev = p.now()
	return p
}

// Tick accounts the elapsed wall-clock time and returns how many frames to
// run now: min(debt, cap). When the cap is hit the remaining debt is
// discarded, not retained, so a long stall (minimized window, suspended
// laptop) costs one bounded burst and nothing more.
func (p *Pacer) Tick() int {
	now := p.now()
	elapsed := now.Sub(p.prev)
	p.prev = now

	if p.paused {
		return 0
	}

	p.debt += float64(elapsed) / float64(FramePeriod)

	n := int(p.debt)
	if n > p.catchUpCap {
		log.ModHost.DebugZ("catch-up capped").
			Int("owed", n).
			Int("cap", p.catchUpCap).
			End()
		p.debt = 0
		return p.catchUpCap
	}
	p.debt -= float64(n)
	return n
}

// Refund returns frames that were released by Tick but not stepped, because
// the audio sink pushed back. They stay owed rather than being dropped.
func (p *Pacer) Refund(n int) {
	p.debt += float64(n)
}

// Pause suspends debt accumulation: time spent paused is not owed.
func (p *Pacer) Pause() {
	p.paused = true
	p.debt = 0
}

// Resume restarts accumulation from now, with zero debt: resuming never
// triggers a catch-up burst.
func (p *Pacer) Resume() {
	p.paused = false
	p.debt = 0
	p.prev = p.now()
}

func (p *Pacer) Paused() bool { return p.paused }

// SleepHint returns how long the host may sleep before the next frame is
// due. Zero when frames are already owed.
func (p *Pacer) SleepHint() time.Duration {
	if p.paused {
		return FramePeriod
	}
	if p.debt >= 1 {
		return 0
	}
	return time.Duration(float64(FramePeriod) * (1 - p.debt))
}
