package emu

import "fmt"

// A RomError reports a ROM image that failed header or size validation.
type RomError struct {
	Reason string
}

func (e *RomError) Error() string { return "rom: " + e.Reason }

func romErrorf(format string, args ...any) error {
	return &RomError{Reason: fmt.Sprintf(format, args...)}
}

// A StateError reports a save-state blob the core refused. The core is left
// unchanged when this is returned.
type StateError struct {
	Err error
}

func (e *StateError) Error() string { return "save state: " + e.Err.Error() }
func (e *StateError) Unwrap() error { return e.Err }
