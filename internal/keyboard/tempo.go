package keyboard

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DefaultBPM is used when a Tempo has no positive BPM.
const DefaultBPM = 90

// ErrHoldRange is returned by Hold when the length does not fit in a
// time.Duration.
var ErrHoldRange = errors.New("hold time out of range")

// Tempo converts note durations into wall-clock time.
type Tempo struct {
	BPM int `yaml:"bpm"`
}

func (t Tempo) bpm() int {
	if t.BPM <= 0 {
		return DefaultBPM
	}
	return t.BPM
}

// Beat returns the length of one time unit.
func (t Tempo) Beat() time.Duration {
	return time.Duration(60000 / float64(t.bpm()) * float64(time.Millisecond))
}

// Hold returns the length of units time units.
func (t Tempo) Hold(units int) (time.Duration, error) {
	beat := t.Beat()
	if units < 0 || beat <= 0 || int64(units) > math.MaxInt64/int64(beat) {
		return 0, fmt.Errorf("%w: %d units at %d bpm", ErrHoldRange, units, t.bpm())
	}
	return time.Duration(units) * beat, nil
}
