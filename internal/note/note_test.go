package note

import (
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		raw      string
		pitch    byte
		acc      Accidental
		octave   int
		duration int
	}{
		{"c", 'c', Natural, 0, 1},
		{"C1", 'c', Sharp, 0, 1},
		{"a+2", 'a', Natural, 1, 2},
		{"g-", 'g', Natural, -1, 1},
		{"f+", 'f', Natural, 1, 1},
		{"A--12", 'a', Sharp, -2, 12},
		{"b+-+", 'b', Natural, 1, 1},
		{"d05", 'd', Natural, 0, 5},
		{"e3x", 'e', Natural, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			n, err := Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode(%q) error: %v", tt.raw, err)
			}
			if n.Pitch != tt.pitch {
				t.Errorf("Pitch = %c, want %c", n.Pitch, tt.pitch)
			}
			if n.Accidental != tt.acc {
				t.Errorf("Accidental = %v, want %v", n.Accidental, tt.acc)
			}
			if n.Octave != tt.octave {
				t.Errorf("Octave = %d, want %d", n.Octave, tt.octave)
			}
			if n.Duration != tt.duration {
				t.Errorf("Duration = %d, want %d", n.Duration, tt.duration)
			}
			if n.Glide != nil {
				t.Errorf("Glide = %v, want nil", n.Glide)
			}
		})
	}
}

func TestDecodeGlide(t *testing.T) {
	n, err := Decode("a+2/F")
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if n.Octave != 1 || n.Duration != 2 {
		t.Errorf("got octave %d duration %d, want 1 and 2", n.Octave, n.Duration)
	}
	if n.Glide == nil {
		t.Fatal("Glide is nil")
	}
	if n.Glide.Pitch != 'f' || n.Glide.Accidental != Sharp {
		t.Errorf("Glide = %s, want f sharp", n.Glide.Name())
	}

	chain, err := Decode("c/d+/e2")
	if err != nil {
		t.Fatalf("Decode chain error: %v", err)
	}
	if chain.Glide == nil || chain.Glide.Glide == nil {
		t.Fatal("expected two glide levels")
	}
	if g := chain.Glide.Glide; g.Pitch != 'e' || g.Duration != 2 {
		t.Errorf("second glide = %s, want e2", g)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		raw    string
		want   error
		offset int
	}{
		{"", ErrEmpty, 0},
		{"h", ErrUnknownPitch, 0},
		{"z+1", ErrUnknownPitch, 0},
		{"E", ErrUnknownPitch, 0},
		{"B+", ErrUnknownPitch, 0},
		{"+c", ErrUnknownPitch, 0},
		{"c0", ErrZeroDuration, 1},
		{"c/", ErrEmptyGlide, 1},
		{"c2/x", ErrUnknownPitch, 3},
		{"c99999999999999999999999", ErrBadDuration, 1},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			_, err := Decode(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode(%q) error = %v, want %v", tt.raw, err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not a *ParseError", err)
			}
			if pe.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", pe.Offset, tt.offset)
			}
		})
	}
}

func TestString(t *testing.T) {
	for _, raw := range []string{"c", "C", "a+2", "g-", "A--12", "a+2/F", "c/d+/e2"} {
		n := MustDecode(raw)
		if got := n.String(); got != raw {
			t.Errorf("MustDecode(%q).String() = %q", raw, got)
		}
	}
	if got := MustDecode("C1").String(); got != "C" {
		t.Errorf("C1 renders as %q, want C", got)
	}
}

func TestMustDecodePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustDecode(\"h\") did not panic")
		}
	}()
	MustDecode("h")
}
