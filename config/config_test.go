//go:build !js

package config

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
)

func TestConfigRoundTrip(t *testing.T) {
	want := defaultConfig()
	want.General.LastROMDir = "/home/me/roms"
	want.Video.Scale = 4

	buf, err := toml.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Config
	if err := toml.Unmarshal(buf, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config round-trip (-want +got):\n%s", diff)
	}
}
