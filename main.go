//go:build !js

package main

import (
	"fmt"
	"os"

	"gbhost/emu"
)

// version is set at build time with -ldflags="-X main.version=...".
var version = "devel"

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case runMode:
		emuMain(cli.Run)
	case romInfosMode:
		romInfosMain(cli.RomInfos)
	case versionMode:
		fmt.Println("gbhost", version)
	}
}

func romInfosMain(args RomInfos) {
	rom, err := os.ReadFile(args.RomPath)
	checkf(err, "failed to read rom %s", args.RomPath)

	hdr, err := emu.ParseHeader(rom)
	checkf(err, "not a valid Game Boy rom")
	hdr.PrintInfos(os.Stdout)
}
