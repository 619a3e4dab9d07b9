//go:build js && wasm

package hw

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"gbhost/emu"
	"gbhost/emu/log"
)

// Backlog bounds for the browser ring, in bytes of 16-bit stereo PCM at
// emu.SampleRate. Above readyThreshold the sink pushes back; above
// maxBacklog (a stuck player) the oldest audio is dropped.
const (
	readyThreshold = 8 * 1024
	maxBacklog     = 64 * 1024
)

// AudioRing is the browser audio sink: a mutex-guarded PCM ring feeding an
// ebiten audio player. The player's reader goroutine drains it; the host
// loop fills it. No resampling: the ebiten context runs at the core's rate.
type AudioRing struct {
	mu     sync.Mutex
	buf    []byte
	player *audio.Player
}

func NewAudioRing() (*AudioRing, error) {
	ring := &AudioRing{}

	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(emu.SampleRate)
	}
	player, err := ctx.NewPlayer(ring)
	if err != nil {
		return nil, err
	}
	player.Play()
	ring.player = player

	log.ModSound.InfoZ("audio player started").Int("rate", emu.SampleRate).End()
	return ring, nil
}

func (r *AudioRing) Ready() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf) <= readyThreshold
}

// Queue appends one interleaved stereo chunk as 16-bit little-endian PCM.
func (r *AudioRing) Queue(chunk []int16) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range chunk {
		r.buf = append(r.buf, byte(s), byte(s>>8))
	}
	if len(r.buf) > maxBacklog {
		r.buf = r.buf[len(r.buf)-maxBacklog:]
	}
}

// Read implements io.Reader for the ebiten player. An empty ring yields
// silence rather than blocking the audio thread.
func (r *AudioRing) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.buf) == 0 {
		n := min(len(p), 1024)
		clear(p[:n])
		return n, nil
	}

	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}
