package speaker

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
)

// Printer writes one line per note instead of making a sound. It is the
// fallback when there is no audio device, and handy for debugging songs.
type Printer struct {
	mu    sync.Mutex
	w     io.Writer
	local listener.ID
}

func NewPrinter(w io.Writer, local listener.ID) *Printer {
	return &Printer{w: w, local: local}
}

func (p *Printer) Emit(to listener.ID, id sound.ID, volume, pitch float64) error {
	if to != p.local {
		return nil
	}
	name := string(id)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.w, "♪ %-9s pitch %.3f  volume %.2f\n", name, pitch, volume)
	return err
}
