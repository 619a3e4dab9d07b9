//go:build !js

package main

import (
	"errors"
	"os"
	"runtime"
	"sync"
	"time"

	"gbhost/config"
	"gbhost/emu"
	"gbhost/emu/log"
	"gbhost/hw"
	"gbhost/hw/input"
	"gbhost/storage"
)

func init() {
	// SDL wants its calls on the thread that initialized it.
	runtime.LockOSThread()
}

// emuMain runs the emulator until the window closes.
func emuMain(args Run) {
	cfg := config.LoadConfigOrDefault()
	if args.Scale > 0 {
		cfg.Video.Scale = args.Scale
	}
	if args.NoVSync {
		cfg.Video.VSync = false
	}

	screen, err := hw.NewScreen("gbhost", cfg.Video.Scale, cfg.Video.VSync)
	checkf(err, "failed to open window")
	defer screen.Close()

	var audio emu.AudioSink = hw.Mute{}
	if !cfg.Audio.Disabled {
		speaker, err := hw.NewSpeaker()
		checkf(err, "failed to open audio device")
		defer speaker.Close()
		audio = speaker
	}

	pads := input.NewGamepads(cfg.Input.Buttons)
	defer pads.Close()
	inputs := input.NewAggregator(input.NewKeyboardSource(cfg.Input.Buttons), pads)

	bridge := storage.NewNative(cfg.General.LastROMDir)
	defer bridge.Close()

	// The picker directory changes on a worker goroutine; fold it back into
	// the config at exit.
	var dirMu sync.Mutex
	lastDir := cfg.General.LastROMDir
	bridge.OnDirPicked = func(dir string) {
		dirMu.Lock()
		lastDir = dir
		dirMu.Unlock()
	}
	defer func() {
		dirMu.Lock()
		cfg.General.LastROMDir = lastDir
		dirMu.Unlock()
		if err := config.SaveConfig(cfg); err != nil {
			log.ModHost.WarnZ("failed to save config").Error("err", err).End()
		}
	}()

	core := emu.NewHandle(emu.NewPatternMachine())
	pacer := emu.NewPacer(0)
	loop := emu.NewLoop(core, pacer, inputs, screen, audio, bridge)
	loop.OnStorageResult = func(kind storage.Kind, err error) {
		if err != nil || kind != storage.LoadROM {
			return
		}
		title := core.Header().Title
		bridge.SetRomTitle(title)
		if title != "" {
			screen.SetTitle("gbhost - " + title)
		}
	}

	if args.RomPath != "" {
		rom, err := os.ReadFile(args.RomPath)
		checkf(err, "failed to read rom %s", args.RomPath)
		checkf(core.LoadROM(rom), "failed to load rom %s", args.RomPath)
		bridge.SetRomTitle(core.Header().Title)
		screen.SetTitle("gbhost - " + core.Header().Title)
	} else {
		// No ROM on the command line: open the picker right away.
		if err := loop.RequestROMLoad(); err != nil {
			log.ModHost.WarnZ("rom request failed").Error("err", err).End()
		}
	}

	for {
		for _, cmd := range hw.PollCommands(pads) {
			switch cmd {
			case hw.CmdQuit:
				return
			case hw.CmdTogglePause:
				loop.SetPaused(!loop.Paused())
			case hw.CmdOpenROM:
				warnBusy(loop.RequestROMLoad())
			case hw.CmdSaveState:
				warnBusy(loop.RequestStateSave())
			case hw.CmdLoadState:
				warnBusy(loop.RequestStateLoad())
			}
		}

		loop.Tick()

		if d := pacer.SleepHint(); d > 0 {
			// Cap the sleep so window events stay responsive even while
			// paused or waiting for a ROM.
			time.Sleep(min(d, 5*time.Millisecond))
		}
	}
}

func warnBusy(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, storage.ErrBusy) {
		log.ModHost.DebugZ("request ignored, already pending").End()
		return
	}
	log.ModHost.WarnZ("request failed").Error("err", err).End()
}
