// Package note decodes the compact note notation used to drive the pen.
//
// A token looks like:
//
//	c       natural c, reference octave, 1 unit
//	a+2     natural a, one octave up, 2 units
//	C1      c sharp, 1 unit
//	a+2/F   as above, gliding into f sharp
//
// Uppercase letters are sharps. Only C, D, F, G and A have one, matching a
// keyboard with five black keys per octave.
package note

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Accidental tells whether a note sits on a natural or a sharp key.
type Accidental int

const (
	Natural Accidental = iota
	Sharp
)

func (a Accidental) String() string {
	if a == Sharp {
		return "sharp"
	}
	return "natural"
}

// MarshalText lets YAML and JSON output show "natural"/"sharp".
func (a Accidental) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Note is one decoded token.
type Note struct {
	Pitch      byte       `yaml:"-" json:"-"`
	Accidental Accidental `yaml:"accidental" json:"accidental"`
	Octave     int        `yaml:"octave" json:"octave"`
	Duration   int        `yaml:"duration" json:"duration"`
	Glide      *Note      `yaml:"glide,omitempty" json:"glide,omitempty"`
}

// Decode errors. They are wrapped in a *ParseError.
var (
	ErrEmpty        = errors.New("empty note")
	ErrUnknownPitch = errors.New("unrecognized pitch")
	ErrBadDuration  = errors.New("invalid duration")
	ErrZeroDuration = errors.New("zero duration")
	ErrEmptyGlide   = errors.New("glide has no target note")
)

// ParseError reports where in a token decoding failed.
type ParseError struct {
	Input  string
	Offset int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("note %q at offset %d: %v", e.Input, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const (
	naturals = "cdefgab"
	sharps   = "CDFGA"
)

// Decode parses a single note token.
func Decode(raw string) (Note, error) {
	n, err := decode(raw, 0)
	if err != nil {
		return Note{}, err
	}
	return *n, nil
}

// MustDecode is Decode for tokens known to be valid. It panics otherwise.
func MustDecode(raw string) Note {
	n, err := Decode(raw)
	if err != nil {
		panic(err)
	}
	return n
}

// decode works on raw[off:] so nested glide errors keep the offset into
// the full token.
func decode(raw string, off int) (*Note, error) {
	s := raw[off:]
	if s == "" {
		return nil, &ParseError{Input: raw, Offset: off, Err: ErrEmpty}
	}

	n := &Note{Duration: 1}
	switch c := s[0]; {
	case strings.IndexByte(naturals, c) >= 0:
		n.Pitch = c
		n.Accidental = Natural
	case strings.IndexByte(sharps, c) >= 0:
		n.Pitch = c + ('a' - 'A')
		n.Accidental = Sharp
	default:
		return nil, &ParseError{Input: raw, Offset: off, Err: ErrUnknownPitch}
	}
	i := 1

	for i < len(s) && (s[i] == '+' || s[i] == '-') {
		if s[i] == '+' {
			n.Octave++
		} else {
			n.Octave--
		}
		i++
	}

	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > start {
		d, err := strconv.Atoi(s[start:i])
		if err != nil {
			return nil, &ParseError{Input: raw, Offset: off + start, Err: fmt.Errorf("%w: %v", ErrBadDuration, err)}
		}
		if d == 0 {
			return nil, &ParseError{Input: raw, Offset: off + start, Err: ErrZeroDuration}
		}
		n.Duration = d
	}

	if i < len(s) && s[i] == '/' {
		if i+1 == len(s) {
			return nil, &ParseError{Input: raw, Offset: off + i, Err: ErrEmptyGlide}
		}
		g, err := decode(raw, off+i+1)
		if err != nil {
			return nil, err
		}
		n.Glide = g
	}
	return n, nil
}

// String renders the note back into notation.
func (n Note) String() string {
	var b strings.Builder
	if n.Accidental == Sharp {
		b.WriteByte(n.Pitch - ('a' - 'A'))
	} else {
		b.WriteByte(n.Pitch)
	}
	for o := n.Octave; o > 0; o-- {
		b.WriteByte('+')
	}
	for o := n.Octave; o < 0; o++ {
		b.WriteByte('-')
	}
	if n.Duration != 1 {
		b.WriteString(strconv.Itoa(n.Duration))
	}
	if n.Glide != nil {
		b.WriteByte('/')
		b.WriteString(n.Glide.String())
	}
	return b.String()
}

// Name is the pitch letter plus "#" for sharps, e.g. "f#".
func (n Note) Name() string {
	if n.Accidental == Sharp {
		return string(n.Pitch) + "#"
	}
	return string(n.Pitch)
}

// MarshalYAML adds the pitch name, which is kept as a byte internally.
func (n Note) MarshalYAML() (any, error) {
	return struct {
		Pitch      string     `yaml:"pitch"`
		Accidental Accidental `yaml:"accidental"`
		Octave     int        `yaml:"octave"`
		Duration   int        `yaml:"duration"`
		Glide      *Note      `yaml:"glide,omitempty"`
	}{n.Name(), n.Accidental, n.Octave, n.Duration, n.Glide}, nil
}
