package log

import (
	"fmt"
	"time"

	"gopkg.in/Sirupsen/logrus.v0"
)

// EntryZ accumulates typed fields for a single log line. A nil EntryZ (the
// module/level is disabled) swallows the whole chain, so callers never have
// to guard logging statements.
type EntryZ struct {
	mod    Module
	lvl    Level
	msg    string
	fields logrus.Fields
}

func (e *EntryZ) String(key, val string) *EntryZ {
	if e != nil {
		e.fields[key] = val
	}
	return e
}

func (e *EntryZ) Int(key string, val int) *EntryZ {
	if e != nil {
		e.fields[key] = val
	}
	return e
}

func (e *EntryZ) Uint64(key string, val uint64) *EntryZ {
	if e != nil {
		e.fields[key] = val
	}
	return e
}

func (e *EntryZ) Hex16(key string, val uint16) *EntryZ {
	if e != nil {
		e.fields[key] = fmt.Sprintf("%04x", val)
	}
	return e
}

func (e *EntryZ) Hex8(key string, val uint8) *EntryZ {
	if e != nil {
		e.fields[key] = fmt.Sprintf("%02x", val)
	}
	return e
}

func (e *EntryZ) Bool(key string, val bool) *EntryZ {
	if e != nil {
		e.fields[key] = val
	}
	return e
}

func (e *EntryZ) Duration(key string, val time.Duration) *EntryZ {
	if e != nil {
		e.fields[key] = val.String()
	}
	return e
}

func (e *EntryZ) Error(key string, err error) *EntryZ {
	if e != nil {
		if err == nil {
			e.fields[key] = "<nil>"
		} else {
			e.fields[key] = err.Error()
		}
	}
	return e
}

func (e *EntryZ) Stringer(key string, val fmt.Stringer) *EntryZ {
	if e != nil {
		e.fields[key] = val.String()
	}
	return e
}

// End emits the accumulated entry.
func (e *EntryZ) End() {
	if e == nil {
		return
	}
	entry := logrus.StandardLogger().
		WithField("_mod", modNames[e.mod]).
		WithFields(e.fields)

	switch e.lvl {
	case DebugLevel:
		entry.Debug(e.msg)
	case InfoLevel:
		entry.Info(e.msg)
	case WarnLevel:
		entry.Warn(e.msg)
	case ErrorLevel:
		entry.Error(e.msg)
	case FatalLevel:
		entry.Fatal(e.msg)
	case PanicLevel:
		entry.Panic(e.msg)
	}
}
