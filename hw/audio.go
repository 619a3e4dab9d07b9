//go:build !js

package hw

import (
	"fmt"
	"unsafe"

	"github.com/arl/blip"
	"github.com/veandco/go-sdl2/sdl"

	"gbhost/emu"
	"gbhost/emu/log"
)

const (
	audioFormat   = sdl.AUDIO_S16LSB
	audioChannels = 2
	audioSamples  = 2048 // device buffer, in sample frames

	// maxChunk bounds one core chunk after resampling. The core emits
	// ~549 stereo pairs per frame; x4 leaves room for catch-up bursts.
	maxChunk = 4096

	// queuedTarget is the backpressure threshold: while more than this
	// many bytes sit in the device queue, the sink reports not ready.
	// Roughly four video frames of 16-bit stereo at 48 kHz.
	queuedTarget = 4 * 800 * 2 * 2
)

// Speaker is the native audio sink. Core chunks arrive at emu.SampleRate
// and are band-limited-resampled to whatever rate the device granted, then
// pushed onto the SDL queue.
type Speaker struct {
	device sdl.AudioDeviceID

	left  *blip.Buffer
	right *blip.Buffer

	prevL int16
	prevR int16

	outbuf [maxChunk * 2]int16
}

func NewSpeaker() (*Speaker, error) {
	want := sdl.AudioSpec{
		Freq:     48000,
		Format:   audioFormat,
		Channels: audioChannels,
		Samples:  audioSamples,
	}
	var have sdl.AudioSpec
	device, err := sdl.OpenAudioDevice("", false, &want, &have, sdl.AUDIO_ALLOW_FREQUENCY_CHANGE)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}

	sp := &Speaker{
		device: device,
		left:   blip.NewBuffer(maxChunk),
		right:  blip.NewBuffer(maxChunk),
	}
	sp.left.SetRates(emu.SampleRate, float64(have.Freq))
	sp.right.SetRates(emu.SampleRate, float64(have.Freq))

	sdl.PauseAudioDevice(device, false)

	log.ModSound.InfoZ("audio device opened").
		Int("freq", int(have.Freq)).
		Int("samples", int(have.Samples)).
		End()

	return sp, nil
}

// Ready reports whether the device queue has room for another chunk. The
// host loop withholds frames while it doesn't.
func (sp *Speaker) Ready() bool {
	return sdl.GetQueuedAudioSize(sp.device) <= queuedTarget
}

// Queue resamples one interleaved stereo chunk and hands it to the device.
func (sp *Speaker) Queue(chunk []int16) {
	n := len(chunk) / 2
	if n == 0 {
		return
	}
	if n > maxChunk {
		n = maxChunk
	}

	// Each input sample pair is one clock; blip converts the delta train
	// to the device rate with proper band limiting.
	for i := range n {
		l, r := chunk[2*i], chunk[2*i+1]
		if l != sp.prevL {
			sp.left.AddDelta(uint64(i), int32(l-sp.prevL))
			sp.prevL = l
		}
		if r != sp.prevR {
			sp.right.AddDelta(uint64(i), int32(r-sp.prevR))
			sp.prevR = r
		}
	}
	sp.left.EndFrame(n)
	sp.right.EndFrame(n)

	out := sp.outbuf[:]
	count := sp.left.ReadSamples(out, maxChunk, blip.Stereo)
	sp.right.ReadSamples(out[1:], maxChunk, blip.Stereo)

	buf := unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), count*2*2)
	cpy := make([]byte, len(buf))
	copy(cpy, buf)

	if err := sdl.QueueAudio(sp.device, cpy); err != nil {
		log.ModSound.DebugZ("failed to queue audio buffer").Error("err", err).End()
	}
}

func (sp *Speaker) Close() {
	sdl.CloseAudioDevice(sp.device)
}
