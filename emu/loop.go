package emu

import (
	"gbhost/emu/log"
	"gbhost/hw/input"
	"gbhost/storage"
)

// VideoSink receives the framebuffer of every stepped frame. When several
// frames run in one tick only the last one is guaranteed to reach the
// screen; a sink may drop intermediates.
type VideoSink interface {
	Present(fb []byte)
}

// AudioSink receives every audio chunk, in order, dropped never. Ready is
// its backpressure signal: when false the loop withholds further stepping
// instead of discarding audio, because an underrun is far more noticeable
// than a late video frame.
type AudioSink interface {
	Ready() bool
	Queue(chunk []int16)
}

// Loop is the host's tick driver. One Tick is one invocation of the
// display-refresh callback: it services storage completions, asks the pacer
// how many frames are owed, and steps the core that many times, feeding
// each frame a freshly polled input snapshot.
//
// Everything here runs on a single logical thread; the core's state is
// mutated only from Tick.
type Loop struct {
	core   *Handle
	pacer  *Pacer
	inputs *input.Aggregator
	video  VideoSink
	audio  AudioSink
	store  storage.Bridge

	pending [storage.NumKinds]*storage.Handle // one slot per request kind

	// OnStorageResult, when set, observes the outcome of every completed
	// storage request: err is nil on success. The loop itself never stops
	// on a storage failure.
	OnStorageResult func(kind storage.Kind, err error)

	paused bool
}

func NewLoop(core *Handle, pacer *Pacer, inputs *input.Aggregator, video VideoSink, audio AudioSink, store storage.Bridge) *Loop {
	return &Loop{
		core:   core,
		pacer:  pacer,
		inputs: inputs,
		video:  video,
		audio:  audio,
		store:  store,
	}
}

func (l *Loop) Core() *Handle { return l.core }

// SetPaused pauses or resumes stepping. Pausing does not cancel in-flight
// storage requests; they complete and are serviced on a later tick.
func (l *Loop) SetPaused(paused bool) {
	if l.paused == paused {
		return
	}
	l.paused = paused
	if paused {
		l.pacer.Pause()
		log.ModHost.InfoZ("paused").End()
	} else {
		l.pacer.Resume()
		log.ModHost.InfoZ("resumed").End()
	}
}

func (l *Loop) Paused() bool { return l.paused }

// RequestROMLoad asks the storage bridge for a ROM image. Rejected with
// storage.ErrBusy while a previous ROM request is pending.
func (l *Loop) RequestROMLoad() error { return l.request(storage.LoadROM) }

// RequestStateLoad asks the storage bridge for a save-state blob.
func (l *Loop) RequestStateLoad() error { return l.request(storage.LoadState) }

func (l *Loop) request(kind storage.Kind) error {
	if l.pending[kind] != nil {
		return storage.ErrBusy
	}
	h, err := l.store.Request(kind)
	if err != nil {
		return err
	}
	l.pending[kind] = &h
	log.ModHost.InfoZ("storage request issued").Stringer("kind", kind).End()
	return nil
}

// RequestStateSave serializes the core now and hands the blob to the
// storage bridge for persistence.
func (l *Loop) RequestStateSave() error {
	if !l.core.Loaded() {
		return romErrorf("no rom loaded")
	}
	if l.pending[storage.PersistState] != nil {
		return storage.ErrBusy
	}
	blob, err := l.core.SaveState()
	if err != nil {
		return err
	}
	h, err := l.store.Persist(blob)
	if err != nil {
		return err
	}
	l.pending[storage.PersistState] = &h
	log.ModHost.InfoZ("storage request issued").Stringer("kind", storage.PersistState).End()
	return nil
}

// Tick runs one iteration of the host loop.
func (l *Loop) Tick() {
	l.serviceStorage()

	if l.paused || l.core.Halted() || l.awaitingROM() {
		// Not stepping: let the pacer account the elapsed time so that it
		// doesn't come due later as a giant catch-up burst.
		l.pacer.Tick()
		return
	}

	frames := l.pacer.Tick()
	for i := range frames {
		if !l.audio.Ready() {
			// Withhold the remaining frames instead of dropping them: the
			// audio sink decides the pace when it is saturated.
			l.pacer.Refund(frames - i)
			return
		}

		snap := l.inputs.Poll()
		video, audio, err := l.core.Step(snap)
		if err != nil {
			// The only fatal condition: the core broke an invariant. Stop
			// stepping for good, leave the last good frame on screen.
			log.ModHost.ErrorZ("core step failed, session halted").
				Error("err", err).
				End()
			return
		}
		l.audio.Queue(audio)
		l.video.Present(video)
	}
}

// awaitingROM reports whether stepping is unsafe because the core has no
// ROM, or a ROM is about to land.
func (l *Loop) awaitingROM() bool {
	return !l.core.Loaded() || l.pending[storage.LoadROM] != nil
}

// serviceStorage drains completed storage requests. Completions are applied
// before any stepping in the same tick.
func (l *Loop) serviceStorage() {
	for k := range l.pending {
		kind := storage.Kind(k)
		h := l.pending[kind]
		if h == nil {
			continue
		}
		res := l.store.Poll(*h)
		if res.Status == storage.Pending {
			continue
		}
		l.pending[kind] = nil

		err := res.Err
		if res.Status == storage.Ready {
			err = l.apply(kind, res.Data)
		}
		if err != nil {
			log.ModHost.WarnZ("storage request failed").
				Stringer("kind", kind).
				Error("err", err).
				End()
		} else {
			log.ModHost.InfoZ("storage request complete").
				Stringer("kind", kind).
				End()
		}
		if l.OnStorageResult != nil {
			l.OnStorageResult(kind, err)
		}
	}
}

// apply feeds a completed load into the core. Persist completions carry no
// data and nothing to apply.
func (l *Loop) apply(kind storage.Kind, data []byte) error {
	switch kind {
	case storage.LoadROM:
		return l.core.LoadROM(data)
	case storage.LoadState:
		return l.core.LoadState(data)
	}
	return nil
}
