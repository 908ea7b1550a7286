// Package keyboard maps decoded notes onto the key layout of a physical
// keyboard, in the coordinate space of the plotting arm.
package keyboard

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chase3718/lou-keys/internal/note"
)

// DefaultProfile is used when no profile name is given.
const DefaultProfile = "VolcaFM"

var (
	ErrUnknownProfile = errors.New("unknown keyboard profile")
	ErrInvalidProfile = errors.New("invalid keyboard profile")
)

// Profile describes where the keys of one keyboard sit under the pen.
//
// The keys run along the Y axis: HighNote sits at HighY and LowNote at LowY,
// everything else is placed linearly between them. Naturals are tapped at
// NaturalX and sharps at SharpX.
type Profile struct {
	Name     string  `yaml:"-"`
	MajorX   float64 `yaml:"major_x"`
	MinorX   float64 `yaml:"minor_x"`
	HighNote string  `yaml:"high_key_note"`
	HighY    float64 `yaml:"high_key_y"`
	LowNote  string  `yaml:"low_key_note"`
	LowY     float64 `yaml:"low_key_y"`
	NaturalX float64 `yaml:"natural_x"`
	SharpX   float64 `yaml:"sharp_x"`
}

// Validate checks that the bounding notes decode and span at least one key.
func (p Profile) Validate() error {
	high, err := note.Decode(p.HighNote)
	if err != nil {
		return fmt.Errorf("%w %q: high_key_note: %w", ErrInvalidProfile, p.Name, err)
	}
	low, err := note.Decode(p.LowNote)
	if err != nil {
		return fmt.Errorf("%w %q: low_key_note: %w", ErrInvalidProfile, p.Name, err)
	}
	if note.Count(high, low)+1 == 0 {
		return fmt.Errorf("%w %q: bounding notes %s and %s give a zero span", ErrInvalidProfile, p.Name, p.HighNote, p.LowNote)
	}
	return nil
}

// Registry holds profiles by name.
type Registry map[string]Profile

// Builtin returns a fresh registry with the known keyboards.
func Builtin() Registry {
	return Registry{
		"VolcaFM": {
			Name:     "VolcaFM",
			MajorX:   0,
			MinorX:   100,
			HighNote: "g-",
			HighY:    1600,
			LowNote:  "f+",
			LowY:     -1500,
			NaturalX: 1000,
			SharpX:   1300,
		},
		"Stylophone": {
			Name:     "Stylophone",
			MajorX:   0,
			MinorX:   100,
			HighNote: "b-",
			HighY:    1000,
			LowNote:  "c+",
			LowY:     -1000,
			NaturalX: 1000,
			SharpX:   1400,
		},
	}
}

// Lookup returns the named profile; an empty name selects DefaultProfile.
func (r Registry) Lookup(name string) (Profile, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, ok := r[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownProfile, name, r.Names())
	}
	p.Name = name
	return p, nil
}

// Names returns the profile names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new registry with other's profiles added over r's.
// Every merged profile is validated.
func (r Registry) Merge(other Registry) (Registry, error) {
	out := make(Registry, len(r)+len(other))
	for name, p := range r {
		out[name] = p
	}
	for name, p := range other {
		p.Name = name
		if err := p.Validate(); err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}
