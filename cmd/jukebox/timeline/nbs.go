package timeline

import (
	"encoding/binary"
	"strings"
)

// NBSHeader is the metadata block of a Note Block Studio file.
type NBSHeader struct {
	Version        int // 0 for the classic format
	Length         int // song length in ticks as stored by the editor
	Layers         int
	Name           string
	Author         string
	OriginalAuthor string
	Description    string
	Tempo          float64 // ticks per second
}

// DecodeNBS imports a Note Block Studio (.nbs) song. Both the classic
// layout and the versioned layout (first short == 0) are accepted; custom
// instruments and trailing layer/instrument sections are ignored.
func DecodeNBS(data []byte) (*Timeline, error) {
	tl, _, err := decodeNBS(data)
	return tl, err
}

// DecodeNBSHeader returns only the header of a .nbs file.
func DecodeNBSHeader(data []byte) (*NBSHeader, error) {
	r := &reader{data: data, order: binary.LittleEndian}
	return readNBSHeader(r)
}

func decodeNBS(data []byte) (*Timeline, *NBSHeader, error) {
	r := &reader{data: data, order: binary.LittleEndian}
	h, err := readNBSHeader(r)
	if err != nil {
		return nil, nil, err
	}

	chords := make(map[int]Chord)
	tick := -1
	for {
		jump, err := r.i16("tick jump")
		if err != nil {
			return nil, nil, err
		}
		if jump == 0 {
			break
		}
		if jump < 0 {
			return nil, nil, r.fail("negative tick jump %d", jump)
		}
		tick += int(jump)
		for {
			layerJump, err := r.i16("layer jump")
			if err != nil {
				return nil, nil, err
			}
			if layerJump == 0 {
				break
			}
			inst, err := r.u8("instrument")
			if err != nil {
				return nil, nil, err
			}
			key, err := r.u8("key")
			if err != nil {
				return nil, nil, err
			}
			if h.Version >= 4 {
				// velocity, panning, fine pitch
				if _, err := r.take(4, "note extras"); err != nil {
					return nil, nil, err
				}
			}
			chords[tick] = append(chords[tick], Note{
				Tick:       tick,
				Instrument: Instrument(inst),
				Pitch:      int(key),
			})
		}
	}

	return New(h.Name, h.Tempo, chords), h, nil
}

func readNBSHeader(r *reader) (*NBSHeader, error) {
	h := &NBSHeader{}

	first, err := r.i16("song length")
	if err != nil {
		return nil, err
	}
	if first == 0 {
		version, err := r.u8("version")
		if err != nil {
			return nil, err
		}
		h.Version = int(version)
		if _, err := r.u8("vanilla instrument count"); err != nil {
			return nil, err
		}
		if h.Version >= 3 {
			length, err := r.i16("song length")
			if err != nil {
				return nil, err
			}
			h.Length = int(length)
		}
	} else {
		h.Length = int(first)
	}

	layers, err := r.i16("layer count")
	if err != nil {
		return nil, err
	}
	h.Layers = int(layers)

	for _, field := range []struct {
		dst  *string
		what string
	}{
		{&h.Name, "song name"},
		{&h.Author, "author"},
		{&h.OriginalAuthor, "original author"},
		{&h.Description, "description"},
	} {
		s, err := readNBSString(r, field.what)
		if err != nil {
			return nil, err
		}
		*field.dst = s
	}

	tempoAt := r.pos
	tempo, err := r.i16("tempo")
	if err != nil {
		return nil, err
	}
	if tempo <= 0 {
		return nil, &DecodeError{Offset: tempoAt, Reason: "tempo must be positive"}
	}
	h.Tempo = float64(tempo) / 100

	// auto-save, auto-save duration, time signature, then five int32 editor stats
	if _, err := r.take(3+5*4, "editor statistics"); err != nil {
		return nil, err
	}
	if _, err := readNBSString(r, "import name"); err != nil {
		return nil, err
	}
	if h.Version >= 4 {
		// loop flag, max loop count, loop start tick
		if _, err := r.take(4, "loop settings"); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func readNBSString(r *reader, what string) (string, error) {
	n, err := r.count(what + " length")
	if err != nil {
		return "", err
	}
	b, err := r.take(n, what)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(b), "?"), nil
}
