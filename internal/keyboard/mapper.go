package keyboard

import (
	"fmt"

	"github.com/chase3718/lou-keys/internal/note"
)

// Mapper converts notes into pen coordinates for one profile. It is
// immutable after NewMapper and safe for concurrent use.
type Mapper struct {
	profile Profile
	high    note.Note
	low     note.Note
	spacing float64
}

// NewMapper looks up name in reg (empty means DefaultProfile) and derives
// the key spacing from the profile's bounding notes.
func NewMapper(reg Registry, name string) (*Mapper, error) {
	p, err := reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	high := note.MustDecode(p.HighNote)
	low := note.MustDecode(p.LowNote)

	// Measured from high to low; reversing the order flips the Y axis.
	total := note.Count(high, low)
	return &Mapper{
		profile: p,
		high:    high,
		low:     low,
		spacing: (p.HighY - p.LowY) / (total + 1),
	}, nil
}

// Profile returns the profile the mapper was built from.
func (m *Mapper) Profile() Profile { return m.profile }

// Spacing is the Y distance between two adjacent natural keys.
func (m *Mapper) Spacing() float64 { return m.spacing }

// Coords returns the pen position for n. Octave and duration only affect y;
// x depends on whether the key is natural or sharp. Notes outside the
// profile's range are extrapolated, not rejected.
func (m *Mapper) Coords(n note.Note) (x, y float64) {
	distance := note.Count(m.high, n) * m.spacing
	y = m.profile.HighY - distance
	if n.Accidental == note.Sharp {
		x = m.profile.SharpX
	} else {
		x = m.profile.NaturalX
	}
	return x, y
}

// CoordsOf decodes raw and returns its coordinates.
func (m *Mapper) CoordsOf(raw string) (x, y float64, err error) {
	n, err := note.Decode(raw)
	if err != nil {
		return 0, 0, fmt.Errorf("keyboard %s: %w", m.profile.Name, err)
	}
	x, y = m.Coords(n)
	return x, y, nil
}

// InRange reports whether n lands between the profile's bounding keys.
func (m *Mapper) InRange(n note.Note) bool {
	_, y := m.Coords(n)
	lo, hi := m.profile.LowY, m.profile.HighY
	if lo > hi {
		lo, hi = hi, lo
	}
	return y >= lo && y <= hi
}
