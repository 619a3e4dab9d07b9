//go:build !js

// Package config persists the native host's settings as a TOML file in the
// user configuration directory.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"gbhost/emu/log"
	"gbhost/hw/input"
)

type GeneralConfig struct {
	// LastROMDir is where the ROM picker opens, updated after every
	// successful pick.
	LastROMDir string `toml:"last_rom_dir"`
}

type VideoConfig struct {
	Scale int  `toml:"scale"`
	VSync bool `toml:"vsync"`
}

type AudioConfig struct {
	Disabled bool `toml:"disabled"`
}

type InputConfig struct {
	// Buttons maps each Game Boy button to a host control, in A, B,
	// Select, Start, Up, Down, Left, Right order.
	Buttons input.Mapping `toml:"buttons"`
}

type Config struct {
	General GeneralConfig `toml:"general"`
	Video   VideoConfig   `toml:"video"`
	Audio   AudioConfig   `toml:"audio"`
	Input   InputConfig   `toml:"input"`
}

const DefaultFileMode = os.FileMode(0755)

var ConfigDir = sync.OnceValue(func() string {
	cfgdir, err := os.UserConfigDir()
	if err != nil {
		log.ModHost.Fatalf("failed to get user config directory: %v", err)
	}

	dir := filepath.Join(cfgdir, "gbhost")
	if err := os.MkdirAll(dir, DefaultFileMode); err != nil {
		log.ModHost.Fatalf("failed to create directory %s: %v", dir, err)
	}
	return dir
})

func defaultConfig() Config {
	return Config{
		Video: VideoConfig{
			Scale: 3,
			VSync: true,
		},
		Input: InputConfig{
			Buttons: input.DefaultMapping(),
		},
	}
}

const cfgFilename = "config.toml"

// LoadConfigOrDefault loads the configuration from the gbhost config
// directory, or provides a default one.
func LoadConfigOrDefault() Config {
	var cfg Config
	_, err := toml.DecodeFile(filepath.Join(ConfigDir(), cfgFilename), &cfg)
	if err != nil {
		return defaultConfig()
	}
	if cfg.Video.Scale < 1 {
		cfg.Video.Scale = defaultConfig().Video.Scale
	}
	var unset input.Code
	for i := range cfg.Input.Buttons {
		if cfg.Input.Buttons[i] == unset {
			cfg.Input.Buttons[i] = input.DefaultMapping()[i]
		}
	}
	return cfg
}

// SaveConfig into the gbhost config directory.
func SaveConfig(cfg Config) error {
	buf, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(ConfigDir(), cfgFilename), buf, 0644)
}
