package input

// A Source reports the instantaneous button state of one physical device.
// Read must be non-blocking and must not fail: a device that has gone away
// reports an all-released snapshot.
type Source interface {
	Read() Snapshot
}

// A PadEnumerator yields the currently connected game controllers, ordered
// by device index. The set may change between calls as devices are plugged
// and unplugged.
type PadEnumerator interface {
	Pads() []Source
}

// Aggregator merges the keyboard with the lowest-index connected game
// controller into a single snapshot per poll. Only the first controller is
// read; with a single emulated player, merging several pads would only make
// inputs ambiguous.
type Aggregator struct {
	keyboard Source
	pads     PadEnumerator
}

func NewAggregator(keyboard Source, pads PadEnumerator) *Aggregator {
	return &Aggregator{keyboard: keyboard, pads: pads}
}

// Poll builds the authoritative snapshot for one emulated frame. It never
// blocks and never fails; absent devices contribute nothing.
func (a *Aggregator) Poll() Snapshot {
	var snap Snapshot
	if a.keyboard != nil {
		snap = a.keyboard.Read()
	}
	if a.pads != nil {
		if pads := a.pads.Pads(); len(pads) > 0 {
			snap = snap.Merge(pads[0].Read())
		}
	}
	return snap
}
