package emu

import (
	"fmt"
	"io"
	"strings"
)

// Game Boy cartridge header layout. The header occupies 0x0100-0x014F, so a
// valid ROM is at least 0x150 bytes.
const headerSize = 0x150

// Header is the decoded cartridge header of a Game Boy ROM image. The host
// only uses it to validate a loaded buffer and to label logs, manifests and
// the rom-infos command; interpretation of the cartridge hardware is the
// core's business.
type Header struct {
	Title       string
	CGBFlag     byte
	CartType    byte
	ROMSizeCode byte
	RAMSizeCode byte
	Checksum    byte

	ROMSize  int // decoded from ROMSizeCode, 0 if unknown
	ROMBanks int
	RAMSize  int
}

// ParseHeader decodes and validates the cartridge header. A nil error
// guarantees the buffer is plausibly a Game Boy ROM: big enough to contain
// the header, checksum intact, and sized consistently with its ROM size
// code.
func ParseHeader(rom []byte) (*Header, error) {
	if len(rom) < headerSize {
		return nil, romErrorf("image too small: %d bytes, header needs %d", len(rom), headerSize)
	}

	h := &Header{
		Title:       decodeTitle(rom[0x134:0x144]),
		CGBFlag:     rom[0x143],
		CartType:    rom[0x147],
		ROMSizeCode: rom[0x148],
		RAMSizeCode: rom[0x149],
		Checksum:    rom[0x14D],
	}

	if sum := headerChecksum(rom); sum != h.Checksum {
		return nil, romErrorf("header checksum mismatch: computed %02x, header says %02x", sum, h.Checksum)
	}

	h.ROMSize, h.ROMBanks = decodeROMSize(h.ROMSizeCode)
	if h.ROMSize == 0 {
		return nil, romErrorf("unknown ROM size code %02x", h.ROMSizeCode)
	}
	if len(rom) < h.ROMSize {
		return nil, romErrorf("image truncated: %d bytes, size code says %d", len(rom), h.ROMSize)
	}
	h.RAMSize = decodeRAMSize(h.RAMSizeCode)

	return h, nil
}

func decodeTitle(raw []byte) string {
	// The title area overlaps the CGB flag on newer carts; stop at the
	// first NUL or non-printable byte.
	end := len(raw)
	for i, b := range raw {
		if b == 0 || b < 0x20 || b > 0x7e {
			end = i
			break
		}
	}
	return strings.TrimRight(string(raw[:end]), " ")
}

// headerChecksum computes the checksum over 0x134-0x14C the way the boot ROM
// does.
func headerChecksum(rom []byte) byte {
	var sum byte
	for addr := 0x134; addr <= 0x14C; addr++ {
		sum = sum - rom[addr] - 1
	}
	return sum
}

func decodeROMSize(code byte) (size, banks int) {
	if code <= 0x08 {
		return 32 * 1024 << code, 2 << code
	}
	return 0, 0
}

func decodeRAMSize(code byte) int {
	switch code {
	case 0x02:
		return 8 * 1024
	case 0x03:
		return 32 * 1024
	case 0x04:
		return 128 * 1024
	case 0x05:
		return 64 * 1024
	}
	return 0
}

func (h *Header) CartTypeString() string {
	switch h.CartType {
	case 0x00:
		return "ROM only"
	case 0x01, 0x02, 0x03:
		return "MBC1"
	case 0x05, 0x06:
		return "MBC2"
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return "MBC3"
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return "MBC5"
	}
	return fmt.Sprintf("unknown (%02x)", h.CartType)
}

// PrintInfos writes a short human-readable description of the header.
func (h *Header) PrintInfos(w io.Writer) {
	title := h.Title
	if title == "" {
		title = "(no title)"
	}
	fmt.Fprintf(w, "Title:          %s\n", title)
	fmt.Fprintf(w, "Cartridge type: %s\n", h.CartTypeString())
	fmt.Fprintf(w, "ROM size:       %d KiB (%d banks)\n", h.ROMSize/1024, h.ROMBanks)
	fmt.Fprintf(w, "RAM size:       %d KiB\n", h.RAMSize/1024)
	fmt.Fprintf(w, "CGB support:    %v\n", h.CGBFlag&0x80 != 0)
}
