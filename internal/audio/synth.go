package audio

import (
	"fmt"
	"math"
	"strconv"
)

// semitone offsets from C for the seven note letters.
var noteOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// NoteFrequency converts a scientific pitch name ("C4", "F#3", "Bb2") to its
// equal-temperament frequency in Hz, with A4 = 440. Clients without sample
// playback synthesize the fallback tone from this value.
func NoteFrequency(pitch string) (float64, error) {
	if len(pitch) < 2 {
		return 0, fmt.Errorf("invalid pitch %q", pitch)
	}

	offset, ok := noteOffsets[pitch[0]]
	if !ok {
		return 0, fmt.Errorf("invalid pitch %q", pitch)
	}

	rest := pitch[1:]
	switch rest[0] {
	case '#':
		offset++
		rest = rest[1:]
	case 'b':
		offset--
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid pitch %q", pitch)
	}

	// MIDI note number; A4 = 69.
	midi := (octave+1)*12 + offset
	return 440 * math.Pow(2, float64(midi-69)/12), nil
}
