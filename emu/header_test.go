package emu

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// makeROM builds a minimal valid 32 KiB ROM image with the given title and a
// correct header checksum.
func makeROM(title string) []byte {
	rom := make([]byte, 32*1024)
	copy(rom[0x134:0x144], title)
	rom[0x14D] = headerChecksum(rom)
	return rom
}

func TestParseHeader(t *testing.T) {
	rom := makeROM("ZELDA")
	h, err := ParseHeader(rom)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}

	want := &Header{
		Title:    "ZELDA",
		Checksum: rom[0x14D],
		ROMSize:  32 * 1024,
		ROMBanks: 2,
	}
	if diff := cmp.Diff(want, h); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		rom  func() []byte
		want string
	}{
		{
			name: "too small",
			rom:  func() []byte { return make([]byte, 0x100) },
			want: "too small",
		},
		{
			name: "checksum mismatch",
			rom: func() []byte {
				rom := makeROM("TETRIS")
				rom[0x14D] ^= 0xff
				return rom
			},
			want: "checksum",
		},
		{
			name: "unknown rom size code",
			rom: func() []byte {
				rom := makeROM("TETRIS")
				rom[0x148] = 0x42
				rom[0x14D] = headerChecksum(rom)
				return rom
			},
			want: "unknown ROM size",
		},
		{
			name: "truncated image",
			rom: func() []byte {
				rom := makeROM("TETRIS")
				rom[0x148] = 0x02 // claims 128 KiB, buffer is 32
				rom[0x14D] = headerChecksum(rom)
				return rom
			},
			want: "truncated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.rom())
			if err == nil {
				t.Fatal("ParseHeader: expected error, got nil")
			}
			var rerr *RomError
			if !errors.As(err, &rerr) {
				t.Fatalf("ParseHeader: error %v is not a RomError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseHeader error = %q, want substring %q", err, tt.want)
			}
		})
	}
}

func TestDecodeTitle(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ZELDA\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00", "ZELDA"},
		{"POKEMON RED\x00\x00\x00\x00\x00", "POKEMON RED"},
		{"PADDED    \x00\x00\x00\x00\x00\x00", "PADDED"},
		{"\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00", ""},
	}
	for _, tt := range tests {
		if got := decodeTitle([]byte(tt.raw)); got != tt.want {
			t.Errorf("decodeTitle(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
