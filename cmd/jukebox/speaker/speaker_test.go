package speaker

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
)

func TestTimbreFor(t *testing.T) {
	tests := []struct {
		id   sound.ID
		want float64
	}{
		{"block.note_block.harp", 1},
		{"block.note_block.bass", 0.25},
		{"block.note_block.bell", 4},
		{"xylophone", 2},
		{"custom.sound.unknown", 1},
	}
	for _, tt := range tests {
		if got := timbreFor(tt.id).octave; got != tt.want {
			t.Errorf("timbreFor(%q).octave = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestVoice_DecaysAndEnds(t *testing.T) {
	id := sound.ID("block.note_block.xylophone")
	v := Voice(id, sound.DefaultVolume, 1, SampleRate)
	want := SampleRate.N(timbreFor(id).length())

	buf := make([][2]float64, 512)
	total := 0
	peak := 0.0
	for {
		n, ok := v.Stream(buf)
		for _, s := range buf[:n] {
			peak = math.Max(peak, math.Abs(s[0]))
			if s[0] != s[1] {
				t.Fatalf("channels differ: %v", s)
			}
		}
		total += n
		if !ok {
			break
		}
	}

	if total != want {
		t.Errorf("streamed %d samples, want %d", total, want)
	}
	if peak == 0 || peak > 0.5*sound.DefaultVolume {
		t.Errorf("peak = %v, want within (0, %v]", peak, 0.5*sound.DefaultVolume)
	}
	if n, ok := v.Stream(buf); n != 0 || ok {
		t.Errorf("Stream() after end = %d, %v, want 0, false", n, ok)
	}
}

func TestVoice_StartsSilent(t *testing.T) {
	v := Voice("block.note_block.harp", 1, 2, SampleRate)
	buf := make([][2]float64, 1)
	v.Stream(buf)
	if buf[0][0] != 0 {
		t.Errorf("first sample = %v, want 0", buf[0][0])
	}
}

func TestPrinter_OnlyLocalListener(t *testing.T) {
	var out bytes.Buffer
	local := listener.NewID()
	p := NewPrinter(&out, local)

	if err := p.Emit(listener.NewID(), "block.note_block.harp", 0.75, 1); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}
	if err := p.Emit(local, "block.note_block.bell", 0.75, 2); err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("printed %d lines, want 1: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "bell") || !strings.Contains(lines[0], "2.000") {
		t.Errorf("line = %q, want bell at pitch 2.000", lines[0])
	}
}
