// Package storage moves byte buffers between the host loop and the outside
// world: ROM images in, save states in and out. Two implementations exist,
// chosen at build time: Native (blocking dialogs and filesystem, isolated on
// worker goroutines) and Browser (file input + FileReader callbacks on the
// page's event loop). Both share the same polled, single-flight contract:
// the loop issues a request, keeps ticking, and observes completion only by
// polling at tick boundaries.
package storage

import (
	"errors"
	"fmt"
	"sync"
)

// Kind identifies one of the pending-request slots. At most one request per
// kind may be in flight.
type Kind uint8

const (
	LoadROM Kind = iota
	LoadState
	PersistState

	// NumKinds sizes per-kind tables, here and in callers tracking their
	// own pending requests.
	NumKinds
)

func (k Kind) String() string {
	switch k {
	case LoadROM:
		return "load-rom"
	case LoadState:
		return "load-state"
	case PersistState:
		return "persist-state"
	}
	return "unknown"
}

type Status uint8

const (
	Pending Status = iota
	Ready
	Failed
)

var (
	// ErrBusy rejects a request while one of the same kind is pending. This
	// is a caller contract violation, reported synchronously: no dialog or
	// browser event is triggered.
	ErrBusy = errors.New("storage: request of this kind already pending")

	// ErrCancelled reports that the user dismissed the file picker.
	ErrCancelled = errors.New("storage: cancelled by user")

	// ErrIO reports a filesystem or transfer failure.
	ErrIO = errors.New("storage: i/o error")

	// ErrInvalidData reports an empty or structurally unusable buffer where
	// a non-empty ROM or state is required.
	ErrInvalidData = errors.New("storage: invalid data")

	// ErrUnknownRequest reports a poll for a handle that is not pending:
	// either never issued here, or already consumed by a terminal poll.
	ErrUnknownRequest = errors.New("storage: unknown request handle")

	// ErrBadKind rejects Request with a kind that is not a load operation.
	ErrBadKind = errors.New("storage: kind is not requestable")
)

func ioError(err error) error { return fmt.Errorf("%w: %v", ErrIO, err) }

// A Handle names one in-flight request. It stays valid until the first poll
// that observes a terminal status, after which the request is discarded.
type Handle struct {
	kind Kind
	seq  uint32
}

func (h Handle) Kind() Kind { return h.kind }

// MakeHandle builds a Handle for a Bridge implemented outside this package.
// The (kind, seq) pair must be unique among that bridge's live requests.
func MakeHandle(kind Kind, seq uint32) Handle {
	return Handle{kind: kind, seq: seq}
}

// A Result is the polled view of a request. Data is only set for a Ready
// load; Err is only set for Failed.
type Result struct {
	Status Status
	Data   []byte
	Err    error
}

// Bridge is the storage contract the host loop programs against.
type Bridge interface {
	// Request starts fetching a byte buffer of the given load kind.
	Request(kind Kind) (Handle, error)

	// Persist starts writing a save-state blob out.
	Persist(data []byte) (Handle, error)

	// Poll reports the state of a previously issued request. It never
	// blocks. The first poll observing Ready or Failed discards the
	// request; later polls yield ErrUnknownRequest.
	Poll(h Handle) Result
}

// tracker implements the single-flight slots and the polled completion
// queue shared by both bridge variants. Completions are recorded from worker
// goroutines or event callbacks; the loop drains them via poll.
type tracker struct {
	mu    sync.Mutex
	seq   uint32
	slots [NumKinds]*slot
}

type slot struct {
	h    Handle
	done bool
	data []byte
	err  error
}

func (t *tracker) begin(kind Kind) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.slots[kind] != nil {
		return Handle{}, ErrBusy
	}
	t.seq++
	h := Handle{kind: kind, seq: t.seq}
	t.slots[kind] = &slot{h: h}
	return h, nil
}

func (t *tracker) complete(h Handle, data []byte, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.slots[h.kind]
	if s == nil || s.h != h || s.done {
		// Request was abandoned. A request is fulfilled exactly once.
		return
	}
	s.done = true
	s.data = data
	s.err = err
}

func (t *tracker) poll(h Handle) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.slots[h.kind]
	if s == nil || s.h != h {
		return Result{Status: Failed, Err: ErrUnknownRequest}
	}
	if !s.done {
		return Result{Status: Pending}
	}

	t.slots[h.kind] = nil
	if s.err != nil {
		return Result{Status: Failed, Err: s.err}
	}
	return Result{Status: Ready, Data: s.data}
}
