package note

import "strings"

// Count returns the signed distance from start to end in natural-key units.
// Each natural key is one unit and a sharp sits half a unit above its
// natural, so Count(c, C) is 0.5 and Count(c, c+) is 7. It is not a
// semitone count.
func Count(start, end Note) float64 {
	var n float64
	if start.Accidental == Sharp {
		n -= 0.5
	}
	if end.Accidental == Sharp {
		n += 0.5
	}
	n += float64(degree(end.Pitch) - degree(start.Pitch))
	n += float64(7 * (end.Octave - start.Octave))
	return n
}

func degree(p byte) int {
	return strings.IndexByte(naturals, p)
}

// MiddleC is the MIDI key of the reference-octave c.
const MiddleC = 60

var semitones = [7]int{0, 2, 4, 5, 7, 9, 11}

// MIDIKey returns the MIDI key number of the note, with the reference c on
// MiddleC. The result may fall outside 0..127 for extreme octaves.
func (n Note) MIDIKey() int {
	k := MiddleC + 12*n.Octave + semitones[degree(n.Pitch)]
	if n.Accidental == Sharp {
		k++
	}
	return k
}

// FromMIDIKey is the inverse of MIDIKey. Black keys are spelled as sharps.
func FromMIDIKey(key int) Note {
	rel := key - MiddleC
	oct := rel / 12
	st := rel % 12
	if st < 0 {
		st += 12
		oct--
	}
	n := Note{Duration: 1, Octave: oct}
	for i := len(semitones) - 1; i >= 0; i-- {
		if semitones[i] <= st {
			n.Pitch = naturals[i]
			if semitones[i] < st {
				n.Accidental = Sharp
			}
			break
		}
	}
	return n
}
