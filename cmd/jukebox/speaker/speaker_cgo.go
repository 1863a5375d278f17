//go:build (linux && cgo) || windows || darwin

package speaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

var (
	initOnce sync.Once
	initErr  error
)

// Speaker plays the notes addressed to the local listener on the default
// audio device. Notes for anyone else are dropped.
type Speaker struct {
	local listener.ID
}

// New opens the audio device, once per process.
func New(local listener.ID) (*Speaker, error) {
	initOnce.Do(func() {
		initErr = speaker.Init(SampleRate, SampleRate.N(time.Second/20))
	})
	if initErr != nil {
		return nil, fmt.Errorf("init speaker: %w", initErr)
	}
	return &Speaker{local: local}, nil
}

func (s *Speaker) Emit(to listener.ID, id sound.ID, volume, pitch float64) error {
	if to != s.local {
		return nil
	}
	speaker.Play(Voice(id, volume, pitch, SampleRate))
	return nil
}

// Close silences anything still ringing.
func (s *Speaker) Close() {
	speaker.Clear()
}
