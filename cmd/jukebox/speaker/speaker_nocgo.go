//go:build !windows && !darwin && !(linux && cgo)

package speaker

import (
	"github.com/gigurra/noteblock/cmd/jukebox/listener"
	"github.com/gigurra/noteblock/cmd/jukebox/sound"
)

// AudioAvailable indicates whether audio playback is supported in this build.
// Audio requires CGO for native sound libraries.
const AudioAvailable = false

// Speaker is a placeholder for builds without audio.
type Speaker struct{}

// New always fails with ErrNoAudio.
func New(listener.ID) (*Speaker, error) {
	return nil, ErrNoAudio
}

func (*Speaker) Emit(listener.ID, sound.ID, float64, float64) error {
	return ErrNoAudio
}

func (*Speaker) Close() {}
