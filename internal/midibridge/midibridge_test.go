package midibridge

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/chase3718/lou-keys/internal/keyboard"
	"github.com/chase3718/lou-keys/internal/note"
	"github.com/chase3718/lou-keys/internal/player"
)

func plan(t *testing.T, tempo keyboard.Tempo, tokens ...string) []player.Step {
	t.Helper()
	m, err := keyboard.NewMapper(keyboard.Builtin(), "")
	if err != nil {
		t.Fatalf("NewMapper error: %v", err)
	}
	steps, err := player.Plan(m, tempo, tokens)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	return steps
}

func TestBuild(t *testing.T) {
	tempo := keyboard.Tempo{BPM: 120}
	s, err := Build(plan(t, tempo, "c", "r2", "C/d2"), tempo)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(s.Tracks) != 2 {
		t.Fatalf("len(Tracks) = %d, want 2", len(s.Tracks))
	}

	want := []struct {
		delta uint32
		msg   []byte
	}{
		{0, midi.NoteOn(0, 60, 100)},
		{960, midi.NoteOff(0, 60)},
		{1920, midi.NoteOn(0, 61, 100)},
		{960, midi.NoteOff(0, 61)},
		{0, midi.NoteOn(0, 62, 100)},
		{1920, midi.NoteOff(0, 62)},
	}
	tr := s.Tracks[1]
	if len(tr) != len(want)+1 {
		t.Fatalf("melody track has %d events, want %d plus end of track", len(tr), len(want))
	}
	for i, w := range want {
		if tr[i].Delta != w.delta {
			t.Errorf("event %d delta = %d, want %d", i, tr[i].Delta, w.delta)
		}
		if !bytes.Equal(tr[i].Message, w.msg) {
			t.Errorf("event %d = % X, want % X", i, []byte(tr[i].Message), w.msg)
		}
	}
}

func TestBuildOutOfRange(t *testing.T) {
	tempo := keyboard.Tempo{}
	if _, err := Build(plan(t, tempo, "c+++++++"), tempo); err == nil {
		t.Error("Build succeeded for a key above 127")
	}
}

func TestBuildDeltaRange(t *testing.T) {
	tempo := keyboard.Tempo{BPM: 120}
	// 2^28 beats is past what an SMF delta time can hold.
	long := time.Duration(1<<28) * tempo.Beat()
	for _, steps := range [][]player.Step{
		{{Token: "r", Rest: long}, {Token: "c", Path: []player.Point{{Note: note.MustDecode("c"), Key: "c0", Hold: tempo.Beat()}}}},
		{{Token: "c", Path: []player.Point{{Note: note.MustDecode("c"), Key: "c0", Hold: long}}}},
	} {
		if _, err := Build(steps, tempo); err == nil {
			t.Errorf("Build(%v) succeeded, want delta time error", steps[0].Token)
		}
	}
}

func TestExportFile(t *testing.T) {
	tempo := keyboard.Tempo{BPM: 90}
	path := filepath.Join(t.TempDir(), "melody.mid")
	if err := ExportFile(path, plan(t, tempo, "c", "c", "g", "r", "A-"), tempo); err != nil {
		t.Fatalf("ExportFile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("MThd")) {
		t.Errorf("file starts with %q, want MThd", data[:4])
	}
}

func TestPickPreferred(t *testing.T) {
	tests := []struct {
		inputs []string
		want   string
		ok     bool
	}{
		{[]string{"Midi Through:0", "volca fm:0"}, "volca fm:0", true},
		{[]string{"Some Synth"}, "Some Synth", true},
		{[]string{"Synth A", "Synth B"}, "", false},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, ok := pickPreferred(filterInputs(tt.inputs, DefaultExcluded), DefaultPreferred)
		if got != tt.want || ok != tt.ok {
			t.Errorf("pickPreferred(%v) = %q, %v; want %q, %v", tt.inputs, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFilterInputs(t *testing.T) {
	got := filterInputs([]string{"Midi Through Port-0", "Launchkey MK3", "dummy out"}, DefaultExcluded)
	if len(got) != 1 || got[0] != "Launchkey MK3" {
		t.Errorf("filterInputs = %v, want [Launchkey MK3]", got)
	}
}
