package timeline

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// ErrMalformed is matched by every DecodeError via errors.Is.
var ErrMalformed = errors.New("malformed song")

// DecodeError reports why and where a song resource could not be decoded.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed song at byte %d: %s", e.Offset, e.Reason)
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformed
}

// reader walks a byte slice, failing with a DecodeError instead of panicking.
type reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

func (r *reader) fail(format string, args ...any) error {
	return &DecodeError{Offset: r.pos, Reason: fmt.Sprintf(format, args...)}
}

func (r *reader) take(n int, what string) ([]byte, error) {
	if n < 0 || len(r.data)-r.pos < n {
		return nil, r.fail("truncated %s: need %d bytes, have %d", what, n, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) u8(what string) (uint8, error) {
	b, err := r.take(1, what)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16(what string) (uint16, error) {
	b, err := r.take(2, what)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

func (r *reader) i16(what string) (int16, error) {
	v, err := r.u16(what)
	return int16(v), err
}

func (r *reader) i32(what string) (int32, error) {
	b, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return int32(r.order.Uint32(b)), nil
}

func (r *reader) f64(what string) (float64, error) {
	b, err := r.take(8, what)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(r.order.Uint64(b)), nil
}

func (r *reader) count(what string) (int, error) {
	start := r.pos
	n, err := r.i32(what)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &DecodeError{Offset: start, Reason: fmt.Sprintf("negative %s %d", what, n)}
	}
	return int(n), nil
}

func (r *reader) utf8String(b []byte, what string) (string, error) {
	if !utf8.Valid(b) {
		return "", &DecodeError{Offset: r.pos - len(b), Reason: what + " is not valid UTF-8"}
	}
	return string(b), nil
}

// Decode parses the native big-endian song format:
//
//	title      u16 length + UTF-8 bytes
//	chordCount i32
//	tempo      f64 (ticks per second, see CheckTempo)
//	chordCount x { tick i32, noteCount i32, noteCount x { instrument u8, pitch i32 } }
//
// Nothing is returned unless the whole resource decodes.
func Decode(data []byte) (*Timeline, error) {
	r := &reader{data: data, order: binary.BigEndian}

	titleLen, err := r.u16("title length")
	if err != nil {
		return nil, err
	}
	raw, err := r.take(int(titleLen), "title")
	if err != nil {
		return nil, err
	}
	title, err := r.utf8String(raw, "title")
	if err != nil {
		return nil, err
	}

	chordCount, err := r.count("chord count")
	if err != nil {
		return nil, err
	}

	tempoAt := r.pos
	tempo, err := r.f64("tempo")
	if err != nil {
		return nil, err
	}
	if err := CheckTempo(tempo); err != nil {
		return nil, &DecodeError{Offset: tempoAt, Reason: err.Error()}
	}

	chords := make(map[int]Chord)
	for i := 0; i < chordCount; i++ {
		tickAt := r.pos
		tick, err := r.i32("chord tick")
		if err != nil {
			return nil, err
		}
		if tick < 0 {
			return nil, &DecodeError{Offset: tickAt, Reason: fmt.Sprintf("negative tick %d", tick)}
		}
		noteCount, err := r.count("note count")
		if err != nil {
			return nil, err
		}
		// An empty chord still marks the tick as part of the song.
		if _, ok := chords[int(tick)]; !ok {
			chords[int(tick)] = Chord{}
		}
		for j := 0; j < noteCount; j++ {
			inst, err := r.u8("instrument")
			if err != nil {
				return nil, err
			}
			pitch, err := r.i32("pitch")
			if err != nil {
				return nil, err
			}
			chords[int(tick)] = append(chords[int(tick)], Note{
				Tick:       int(tick),
				Instrument: Instrument(inst),
				Pitch:      int(pitch),
			})
		}
	}

	return New(title, tempo, chords), nil
}
