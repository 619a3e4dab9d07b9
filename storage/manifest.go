package storage

import (
	"fmt"
	"os"
	"time"

	"github.com/go-faster/jx"
)

// A Manifest is the JSON sidecar written next to a persisted save state. It
// is informational only: the state blob itself stays opaque and versioned by
// the core.
type Manifest struct {
	Rom     string    // title of the loaded ROM, may be empty
	Created time.Time // when the state was persisted
	Size    int       // state blob size in bytes
}

func (m Manifest) encode() []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("rom", func(e *jx.Encoder) { e.Str(m.Rom) })
		e.Field("created", func(e *jx.Encoder) { e.Str(m.Created.Format(time.RFC3339)) })
		e.Field("size", func(e *jx.Encoder) { e.Int(m.Size) })
	})
	return e.Bytes()
}

func decodeManifest(data []byte) (Manifest, error) {
	var m Manifest
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "rom":
			s, err := d.Str()
			if err != nil {
				return err
			}
			m.Rom = s
		case "created":
			s, err := d.Str()
			if err != nil {
				return err
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return fmt.Errorf("bad created timestamp: %w", err)
			}
			m.Created = t
		case "size":
			n, err := d.Int()
			if err != nil {
				return err
			}
			m.Size = n
		default:
			return d.Skip()
		}
		return nil
	})
	return m, err
}

func WriteManifest(path string, m Manifest) error {
	return os.WriteFile(path, m.encode(), 0644)
}

func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	return decodeManifest(data)
}
