// Package midibridge connects note sequences to MIDI: it writes them out as
// Standard MIDI Files and reads live key presses from a MIDI keyboard.
package midibridge

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/chase3718/lou-keys/internal/keyboard"
	"github.com/chase3718/lou-keys/internal/player"
)

// TicksPerBeat is the SMF resolution; one note unit is one beat.
const TicksPerBeat = 960

const (
	channel  = 0
	velocity = 100

	// maxDelta is the largest delta time an SMF variable-length quantity holds.
	maxDelta = 0x0FFFFFFF
)

// Build converts planned steps into a two-track SMF: a tempo track and a
// melody track. Glide targets become consecutive notes.
func Build(steps []player.Step, tempo keyboard.Tempo) (*smf.SMF, error) {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerBeat)

	bpm := tempo.BPM
	if bpm <= 0 {
		bpm = keyboard.DefaultBPM
	}
	var meta smf.Track
	meta.Add(0, smf.MetaMeter(4, 4))
	meta.Add(0, smf.MetaTempo(float64(bpm)))
	meta.Close(0)
	if err := s.Add(meta); err != nil {
		return nil, fmt.Errorf("add tempo track: %w", err)
	}

	beat := tempo.Beat()
	var track smf.Track
	var rest time.Duration
	for i, st := range steps {
		if st.IsRest() {
			if rest+st.Rest < rest {
				return nil, fmt.Errorf("step %d: rests too long", i)
			}
			rest += st.Rest
			continue
		}
		for _, pt := range st.Path {
			key := pt.Note.MIDIKey()
			if key < 0 || key > 127 {
				return nil, fmt.Errorf("step %d: %s is outside the MIDI key range", i, pt.Key)
			}
			gap, err := ticks(rest, beat)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			hold, err := ticks(pt.Hold, beat)
			if err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			track.Add(gap, midi.NoteOn(channel, uint8(key), velocity))
			track.Add(hold, midi.NoteOff(channel, uint8(key)))
			rest = 0
		}
	}
	gap, err := ticks(rest, beat)
	if err != nil {
		return nil, fmt.Errorf("trailing rest: %w", err)
	}
	track.Close(gap)
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("add melody track: %w", err)
	}
	return s, nil
}

// Export writes the SMF for steps to w.
func Export(w io.Writer, steps []player.Step, tempo keyboard.Tempo) error {
	s, err := Build(steps, tempo)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	return nil
}

// ExportFile writes the SMF for steps to path.
func ExportFile(path string, steps []player.Step, tempo keyboard.Tempo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Export(f, steps, tempo); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ticks(d, beat time.Duration) (uint32, error) {
	n := math.Round(float64(d) / float64(beat) * TicksPerBeat)
	if n < 0 || n > maxDelta {
		return 0, fmt.Errorf("%v does not fit in an SMF delta time", d)
	}
	return uint32(n), nil
}
