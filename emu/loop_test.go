package emu

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"gbhost/hw/input"
	"gbhost/storage"
)

// scriptBridge is a hand-cranked storage bridge: requests sit Pending until
// the test completes them, exactly like the real bridges viewed through
// their polled contract.
type scriptBridge struct {
	seq       uint32
	results   map[storage.Handle]storage.Result
	handles   map[storage.Kind]storage.Handle
	persisted [][]byte
}

func newScriptBridge() *scriptBridge {
	return &scriptBridge{
		results: make(map[storage.Handle]storage.Result),
		handles: make(map[storage.Kind]storage.Handle),
	}
}

func (b *scriptBridge) Request(kind storage.Kind) (storage.Handle, error) {
	b.seq++
	h := storage.MakeHandle(kind, b.seq)
	b.results[h] = storage.Result{Status: storage.Pending}
	b.handles[kind] = h
	return h, nil
}

func (b *scriptBridge) Persist(data []byte) (storage.Handle, error) {
	b.persisted = append(b.persisted, bytes.Clone(data))
	h, err := b.Request(storage.PersistState)
	return h, err
}

func (b *scriptBridge) Poll(h storage.Handle) storage.Result {
	res, ok := b.results[h]
	if !ok {
		return storage.Result{Status: storage.Failed, Err: storage.ErrUnknownRequest}
	}
	if res.Status != storage.Pending {
		delete(b.results, h)
	}
	return res
}

// complete resolves the pending request of the given kind.
func (b *scriptBridge) complete(kind storage.Kind, res storage.Result) {
	b.results[b.handles[kind]] = res
}

type stubVideo struct {
	frames int
}

func (v *stubVideo) Present([]byte) { v.frames++ }

type stubAudio struct {
	ready  bool
	chunks int
}

func (a *stubAudio) Ready() bool   { return a.ready }
func (a *stubAudio) Queue([]int16) { a.chunks++ }

// scriptSource replays a fixed snapshot sequence, one per Read.
type scriptSource struct {
	seq []input.Snapshot
	i   int
}

func (s *scriptSource) Read() input.Snapshot {
	if s.i >= len(s.seq) {
		return 0
	}
	snap := s.seq[s.i]
	s.i++
	return snap
}

// recordMachine counts frames and records the snapshot fed to each.
type recordMachine struct {
	*PatternMachine
	snaps   []input.Snapshot
	failRun bool
}

func (m *recordMachine) RunFrame(snap input.Snapshot) error {
	if m.failRun {
		return errors.New("injected run failure")
	}
	m.snaps = append(m.snaps, snap)
	return m.PatternMachine.RunFrame(snap)
}

type loopFixture struct {
	loop    *Loop
	clock   *fakeClock
	machine *recordMachine
	bridge  *scriptBridge
	video   *stubVideo
	audio   *stubAudio
	source  *scriptSource

	results []error // OnStorageResult errors in completion order
}

func newLoopFixture(t *testing.T) *loopFixture {
	t.Helper()

	f := &loopFixture{
		machine: &recordMachine{PatternMachine: NewPatternMachine()},
		bridge:  newScriptBridge(),
		video:   &stubVideo{},
		audio:   &stubAudio{ready: true},
		source:  &scriptSource{},
	}
	pacer, clock := newTestPacer(10)
	f.clock = clock
	f.loop = NewLoop(
		NewHandle(f.machine),
		pacer,
		input.NewAggregator(f.source, nil),
		f.video, f.audio, f.bridge,
	)
	f.loop.OnStorageResult = func(_ storage.Kind, err error) {
		f.results = append(f.results, err)
	}
	return f
}

// loadROM drives a full ROM request/complete/apply cycle.
func (f *loopFixture) loadROM(t *testing.T, rom []byte) {
	t.Helper()
	if err := f.loop.RequestROMLoad(); err != nil {
		t.Fatalf("RequestROMLoad: %v", err)
	}
	f.bridge.complete(storage.LoadROM, storage.Result{Status: storage.Ready, Data: rom})
	f.loop.Tick()
	if !f.loop.Core().Loaded() {
		t.Fatal("core not loaded after ROM completion")
	}
}

func TestLoopROMLoadFlow(t *testing.T) {
	f := newLoopFixture(t)

	// Nothing to run yet: ticks are no-ops however much time passes.
	f.clock.frames(5)
	f.loop.Tick()
	if len(f.machine.snaps) != 0 {
		t.Fatalf("stepped %d frames with no ROM, want 0", len(f.machine.snaps))
	}

	if err := f.loop.RequestROMLoad(); err != nil {
		t.Fatalf("RequestROMLoad: %v", err)
	}
	if err := f.loop.RequestROMLoad(); !errors.Is(err, storage.ErrBusy) {
		t.Errorf("second RequestROMLoad error = %v, want ErrBusy", err)
	}

	// Still pending: no stepping, and the wait does not build up debt.
	f.clock.frames(30)
	f.loop.Tick()
	if len(f.machine.snaps) != 0 {
		t.Fatalf("stepped %d frames while ROM pending, want 0", len(f.machine.snaps))
	}

	// Completion is applied at the next tick, and stepping resumes without
	// a catch-up burst for the time spent waiting.
	f.bridge.complete(storage.LoadROM, storage.Result{Status: storage.Ready, Data: makeROM("ZELDA")})
	f.clock.frames(1)
	f.loop.Tick()
	if !f.loop.Core().Loaded() {
		t.Fatal("core not loaded after completion tick")
	}
	if got := len(f.machine.snaps); got != 1 {
		t.Errorf("stepped %d frames on completion tick, want 1", got)
	}
	if diff := cmp.Diff([]error{nil}, f.results, cmp.Comparer(sameError)); diff != "" {
		t.Errorf("storage results (-want +got):\n%s", diff)
	}
}

func TestLoopFreshSnapshotPerFrame(t *testing.T) {
	f := newLoopFixture(t)
	f.loadROM(t, makeROM("INPUT"))

	want := []input.Snapshot{
		1 << input.BtnA,
		1 << input.BtnStart,
		1 << input.BtnLeft,
	}
	f.source.seq = want

	f.clock.frames(3)
	f.loop.Tick()
	if diff := cmp.Diff(want, f.machine.snaps); diff != "" {
		t.Errorf("snapshots fed to core (-want +got):\n%s", diff)
	}
	if f.video.frames != 3 || f.audio.chunks != 3 {
		t.Errorf("presented %d frames, queued %d chunks, want 3 and 3",
			f.video.frames, f.audio.chunks)
	}
}

func TestLoopAudioBackpressure(t *testing.T) {
	f := newLoopFixture(t)
	f.loadROM(t, makeROM("AUDIO"))

	f.audio.ready = false
	f.clock.frames(5)
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 0 {
		t.Fatalf("stepped %d frames against saturated audio, want 0", got)
	}

	// The withheld frames are still owed once the sink drains.
	f.audio.ready = true
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 5 {
		t.Errorf("stepped %d frames after sink drained, want 5", got)
	}
}

func TestLoopStorageFailureKeepsRunning(t *testing.T) {
	f := newLoopFixture(t)
	f.loadROM(t, makeROM("RUN"))

	if err := f.loop.RequestStateLoad(); err != nil {
		t.Fatalf("RequestStateLoad: %v", err)
	}
	f.bridge.complete(storage.LoadState, storage.Result{Status: storage.Failed, Err: storage.ErrCancelled})

	f.clock.frames(2)
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 2 {
		t.Errorf("stepped %d frames after cancelled state load, want 2", got)
	}
	if len(f.results) != 2 || !errors.Is(f.results[1], storage.ErrCancelled) {
		t.Errorf("storage results = %v, want trailing ErrCancelled", f.results)
	}
}

func TestLoopPersistFailureKeepsRunning(t *testing.T) {
	f := newLoopFixture(t)
	f.loadROM(t, makeROM("RUN"))

	if err := f.loop.RequestStateSave(); err != nil {
		t.Fatalf("RequestStateSave: %v", err)
	}
	before, err := f.loop.Core().SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	f.bridge.complete(storage.PersistState, storage.Result{Status: storage.Failed, Err: storage.ErrIO})

	f.clock.frames(1)
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 1 {
		t.Errorf("stepped %d frames after failed persist, want 1", got)
	}
	if len(f.results) != 2 || !errors.Is(f.results[1], storage.ErrIO) {
		t.Errorf("storage results = %v, want trailing ErrIO", f.results)
	}

	// A failed persist never touches the core. The stepped frame advanced
	// it once; stepping a fresh machine from the saved blob must agree.
	ref := NewHandle(NewPatternMachine())
	if err := ref.LoadROM(makeROM("RUN")); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if err := ref.LoadState(before); err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	wantVideo, _, err := ref.Step(0)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if diff := cmp.Diff(wantVideo, f.machine.VideoBuffer()); diff != "" {
		t.Errorf("core diverged after failed persist (-want +got):\n%s", diff)
	}
}

func TestLoopBadStateBlobKeepsRunning(t *testing.T) {
	f := newLoopFixture(t)
	f.loadROM(t, makeROM("RUN"))

	if err := f.loop.RequestStateLoad(); err != nil {
		t.Fatalf("RequestStateLoad: %v", err)
	}
	f.bridge.complete(storage.LoadState, storage.Result{Status: storage.Ready, Data: []byte("garbage")})

	f.clock.frames(1)
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 1 {
		t.Errorf("stepped %d frames after rejected state blob, want 1", got)
	}
	var serr *StateError
	if len(f.results) != 2 || !errors.As(f.results[1], &serr) {
		t.Errorf("storage results = %v, want trailing StateError", f.results)
	}
}

func TestLoopStateSave(t *testing.T) {
	f := newLoopFixture(t)

	if err := f.loop.RequestStateSave(); err == nil {
		t.Error("RequestStateSave with no ROM: expected error")
	}

	f.loadROM(t, makeROM("SAVE"))
	if err := f.loop.RequestStateSave(); err != nil {
		t.Fatalf("RequestStateSave: %v", err)
	}
	if err := f.loop.RequestStateSave(); !errors.Is(err, storage.ErrBusy) {
		t.Errorf("second RequestStateSave error = %v, want ErrBusy", err)
	}

	want, err := f.loop.Core().SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if len(f.bridge.persisted) != 1 {
		t.Fatalf("persisted %d blobs, want 1", len(f.bridge.persisted))
	}
	if diff := cmp.Diff(want, f.bridge.persisted[0]); diff != "" {
		t.Errorf("persisted blob (-want +got):\n%s", diff)
	}

	f.bridge.complete(storage.PersistState, storage.Result{Status: storage.Ready})
	f.loop.Tick()
	if len(f.results) != 2 || f.results[1] != nil {
		t.Errorf("storage results = %v, want trailing nil", f.results)
	}
	if err := f.loop.RequestStateSave(); err != nil {
		t.Errorf("RequestStateSave after completion: %v", err)
	}
}

func TestLoopStepErrorHalts(t *testing.T) {
	f := newLoopFixture(t)
	f.loadROM(t, makeROM("CRASH"))

	f.machine.failRun = true
	f.clock.frames(1)
	f.loop.Tick()
	if !f.loop.Core().Halted() {
		t.Fatal("core not halted after failed step")
	}

	// Halted is terminal: later ticks never step again.
	f.machine.failRun = false
	f.clock.frames(3)
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 0 {
		t.Errorf("stepped %d frames after halt, want 0", got)
	}
}

func TestLoopPause(t *testing.T) {
	f := newLoopFixture(t)
	f.loadROM(t, makeROM("PAUSE"))

	f.loop.SetPaused(true)
	f.clock.frames(20)
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 0 {
		t.Fatalf("stepped %d frames while paused, want 0", got)
	}

	// Resuming owes nothing for the paused stretch.
	f.loop.SetPaused(false)
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 0 {
		t.Errorf("stepped %d frames right after resume, want 0", got)
	}
	f.clock.frames(1)
	f.loop.Tick()
	if got := len(f.machine.snaps); got != 1 {
		t.Errorf("stepped %d frames one period after resume, want 1", got)
	}
}

func sameError(a, b error) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Error() == b.Error()
}
