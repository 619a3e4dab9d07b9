package hw

// Mute is an audio sink that accepts everything and plays nothing, used
// when audio is disabled in the config. Always ready: with no device to
// saturate there is no backpressure.
type Mute struct{}

func (Mute) Ready() bool   { return true }
func (Mute) Queue([]int16) {}
