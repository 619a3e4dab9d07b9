// Package log provides leveled, per-module logging for the host shell.
// Warnings and above are always emitted; debug/info logs are gated by a
// module mask so that chatty subsystems can be enabled one by one from the
// command line.
package log

import (
	"gopkg.in/Sirupsen/logrus.v0"
)

type (
	Module     uint
	ModuleMask uint64
)

const ModuleMaskAll ModuleMask = 0xFFFFFFFFFFFFFFFF

const (
	ModHost Module = iota + 1
	ModInput
	ModStorage
	ModCore
	ModVideo
	ModSound

	endStandardMods
)

var modNames = []string{
	"<error>", "host", "input", "storage", "core", "video", "sound",
}

type Level uint8

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

var modDebugMask ModuleMask

func EnableDebugModules(mask ModuleMask) {
	modDebugMask |= mask
	logrus.SetLevel(logrus.DebugLevel)
}

// Disable turns off all logging, including warnings and errors.
func Disable() { logrus.SetLevel(logrus.PanicLevel) }

func ModuleByName(name string) (Module, bool) {
	for idx, s := range modNames[1:] {
		if s == name {
			return Module(idx + 1), true
		}
	}
	return Module(0), false
}

func ModuleNames() []string {
	names := make([]string, len(modNames)-1)
	copy(names, modNames[1:])
	return names
}

func (mod Module) Mask() ModuleMask { return 1 << ModuleMask(mod) }

func (mod Module) Enabled(level Level) bool {
	return level <= WarnLevel || modDebugMask&mod.Mask() != 0
}

// printf-like family.

func (mod Module) Debugf(format string, args ...any) {
	if mod.Enabled(DebugLevel) {
		mod.entry().Debugf(format, args...)
	}
}

func (mod Module) Infof(format string, args ...any) {
	if mod.Enabled(InfoLevel) {
		mod.entry().Infof(format, args...)
	}
}

func (mod Module) Warnf(format string, args ...any) {
	if mod.Enabled(WarnLevel) {
		mod.entry().Warnf(format, args...)
	}
}

func (mod Module) Errorf(format string, args ...any) {
	if mod.Enabled(ErrorLevel) {
		mod.entry().Errorf(format, args...)
	}
}

func (mod Module) Fatalf(format string, args ...any) {
	mod.entry().Fatalf(format, args...)
}

func (mod Module) entry() *logrus.Entry {
	return logrus.StandardLogger().WithField("_mod", modNames[mod])
}

// Typed-field family. The chain allocates a single entry and emits it on
// End:
//
//	log.ModStorage.InfoZ("request complete").String("kind", k).Int("size", n).End()

func (mod Module) DebugZ(msg string) *EntryZ { return mod.logz(DebugLevel, msg) }
func (mod Module) InfoZ(msg string) *EntryZ  { return mod.logz(InfoLevel, msg) }
func (mod Module) WarnZ(msg string) *EntryZ  { return mod.logz(WarnLevel, msg) }
func (mod Module) ErrorZ(msg string) *EntryZ { return mod.logz(ErrorLevel, msg) }
func (mod Module) FatalZ(msg string) *EntryZ { return mod.logz(FatalLevel, msg) }

func (mod Module) logz(lvl Level, msg string) *EntryZ {
	if !mod.Enabled(lvl) {
		return nil
	}
	return &EntryZ{
		mod:    mod,
		lvl:    lvl,
		msg:    msg,
		fields: make(logrus.Fields, 8),
	}
}
