// Package player turns a sequence of note tokens into pen moves.
package player

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chase3718/lou-keys/internal/keyboard"
	"github.com/chase3718/lou-keys/internal/note"
)

// RestToken marks a rest. It may be followed by a length, e.g. "r2".
const RestToken = "r"

// Point is one place the pen touches and how long it stays there.
type Point struct {
	Note note.Note     `yaml:"-"`
	Key  string        `yaml:"key"`
	X    float64       `yaml:"x"`
	Y    float64       `yaml:"y"`
	Hold time.Duration `yaml:"hold"`
}

// Step is one token of the sequence. A rest has no Path. Otherwise Path
// starts at the tapped key and follows its glide targets with the pen down.
type Step struct {
	Token string        `yaml:"token"`
	Rest  time.Duration `yaml:"rest,omitempty"`
	Path  []Point       `yaml:"path,omitempty"`
}

// IsRest reports whether the step moves nothing.
func (s Step) IsRest() bool { return len(s.Path) == 0 }

// Duration is the total time the step takes.
func (s Step) Duration() time.Duration {
	d := s.Rest
	for _, p := range s.Path {
		d += p.Hold
	}
	return d
}

// Plan decodes every token and computes where and how long the pen goes.
// It fails on the first bad token without returning a partial plan.
func Plan(m *keyboard.Mapper, tempo keyboard.Tempo, tokens []string) ([]Step, error) {
	steps := make([]Step, 0, len(tokens))
	for i, tok := range tokens {
		st, err := planToken(m, tempo, tok)
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		steps = append(steps, st)
	}
	return steps, nil
}

// Tokens splits a whitespace separated melody, e.g. "c c g r A- A- f".
func Tokens(melody string) []string {
	return strings.Fields(melody)
}

func planToken(m *keyboard.Mapper, tempo keyboard.Tempo, tok string) (Step, error) {
	if units, ok, err := parseRest(tok); ok {
		if err != nil {
			return Step{}, err
		}
		d, err := tempo.Hold(units)
		if err != nil {
			return Step{}, fmt.Errorf("rest %q: %w", tok, err)
		}
		return Step{Token: tok, Rest: d}, nil
	}

	n, err := note.Decode(tok)
	if err != nil {
		return Step{}, err
	}
	st := Step{Token: tok}
	for cur := &n; cur != nil; cur = cur.Glide {
		hold, err := tempo.Hold(cur.Duration)
		if err != nil {
			return Step{}, fmt.Errorf("note %q: %w", tok, err)
		}
		x, y := m.Coords(*cur)
		key := *cur
		key.Glide = nil
		st.Path = append(st.Path, Point{
			Note: key,
			Key:  key.Name() + strconv.Itoa(key.Octave),
			X:    x,
			Y:    y,
			Hold: hold,
		})
	}
	return st, nil
}

func parseRest(tok string) (units int, ok bool, err error) {
	if !strings.HasPrefix(tok, RestToken) {
		return 0, false, nil
	}
	rest := tok[len(RestToken):]
	if rest == "" {
		return 1, true, nil
	}
	units, err = strconv.Atoi(rest)
	if err != nil || units <= 0 {
		return 0, true, fmt.Errorf("invalid rest %q", tok)
	}
	return units, true, nil
}
