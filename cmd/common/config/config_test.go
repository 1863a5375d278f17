package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gigurra/noteblock/cmd/jukebox"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
	"github.com/gigurra/noteblock/cmd/jukebox/timeline"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Volume != sound.DefaultVolume {
		t.Errorf("Volume = %v, want %v", cfg.Volume, sound.DefaultVolume)
	}
	if cfg.Policy() != jukebox.PolicySkip {
		t.Errorf("Policy() = %q, want %q", cfg.Policy(), jukebox.PolicySkip)
	}
	if len(cfg.Extensions) != 2 {
		t.Errorf("Extensions = %v, want the defaults", cfg.Extensions)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "repeat: true\non_decode_error: halt\nsounds:\n  bell: custom.ding\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Repeat || cfg.Policy() != jukebox.PolicyHalt {
		t.Errorf("cfg = %+v, want repeat and halt", cfg)
	}
	if cfg.Volume != sound.DefaultVolume {
		t.Errorf("Volume = %v, want default %v", cfg.Volume, sound.DefaultVolume)
	}
	table, err := cfg.SoundTable()
	if err != nil {
		t.Fatalf("SoundTable() error = %v", err)
	}
	if got := table.Resolve(timeline.Bell); got != "custom.ding" {
		t.Errorf("bell = %q, want custom.ding", got)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"volume too high", "volume: 2\n"},
		{"volume zero", "volume: 0\n"},
		{"policy", "on_decode_error: retry\n"},
		{"instrument", "sounds:\n  kazoo: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalid) {
				t.Errorf("Load() error = %v, want %v", err, ErrInvalid)
			}
		})
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("volume: [1, 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() of broken YAML succeeded")
	}
}

func TestSave_LoadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Volume = 0.5
	cfg.Notify = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Volume != 0.5 || !got.Notify {
		t.Errorf("Load() = %+v, want volume 0.5 and notify", got)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NOTEBLOCK_HOME", dir)
	if got, want := DefaultPath(), filepath.Join(dir, "config.yaml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
