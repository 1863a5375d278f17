package timeline

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Encode writes t in the native format read by Decode. Chords are written
// in ascending tick order.
func Encode(t *Timeline) ([]byte, error) {
	if len(t.Title) > math.MaxUint16 {
		return nil, fmt.Errorf("title too long: %d bytes", len(t.Title))
	}
	if err := CheckTempo(t.Tempo); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := func(v any) {
		// bytes.Buffer writes never fail
		_ = binary.Write(&buf, binary.BigEndian, v)
	}

	w(uint16(len(t.Title)))
	buf.WriteString(t.Title)
	w(int32(len(t.Chords)))
	w(t.Tempo)
	for _, tick := range t.Ticks() {
		chord := t.Chords[tick]
		w(int32(tick))
		w(int32(len(chord)))
		for _, n := range chord {
			w(uint8(n.Instrument))
			w(int32(n.Pitch))
		}
	}
	return buf.Bytes(), nil
}
