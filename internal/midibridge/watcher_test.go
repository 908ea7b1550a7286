package midibridge

import (
	"sync"
	"testing"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/testdrv"

	"github.com/chase3718/lou-keys/internal/note"
)

// unpluggable hides the wrapped driver's inputs once unplugged.
type unpluggable struct {
	drivers.Driver

	mu        sync.Mutex
	unplugged bool
}

func (d *unpluggable) Ins() ([]drivers.In, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unplugged {
		return nil, nil
	}
	return d.Driver.Ins()
}

func (d *unpluggable) unplug() {
	d.mu.Lock()
	d.unplugged = true
	d.mu.Unlock()
}

type keyEvent struct {
	on  bool
	n   note.Note
	vel uint8
}

func newTestWatcher(t *testing.T) (*Watcher, *unpluggable, chan keyEvent, chan struct{}) {
	t.Helper()
	drv := &unpluggable{Driver: testdrv.New("volca")}
	t.Cleanup(func() { _ = drv.Driver.Close() })

	keys := make(chan keyEvent, 8)
	gone := make(chan struct{}, 1)
	w := NewWatcherWithDriver(drv,
		func(on bool, n note.Note, vel uint8) { keys <- keyEvent{on, n, vel} },
		func() { gone <- struct{}{} },
		nil)
	t.Cleanup(w.Close)
	return w, drv, keys, gone
}

// rescanNow lets the next Tick skip the rescan interval.
func rescanNow(w *Watcher) {
	w.mu.Lock()
	w.lastRescanAt = time.Time{}
	w.mu.Unlock()
}

func waitKey(t *testing.T, keys chan keyEvent) keyEvent {
	t.Helper()
	select {
	case ev := <-keys:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no key event")
		return keyEvent{}
	}
}

func TestWatcherHotPlug(t *testing.T) {
	w, drv, keys, gone := newTestWatcher(t)

	ins, err := drv.Ins()
	if err != nil || len(ins) == 0 {
		t.Fatalf("Ins() = %v, %v", ins, err)
	}
	port := ins[0].String()
	w.Preferred = []string{"nomatch", port}

	if _, ok := w.Connected(); ok {
		t.Fatal("connected before the first Tick")
	}
	w.Tick()
	if name, ok := w.Connected(); !ok || name != port {
		t.Fatalf("Connected() = %q, %v; want %q, true", name, ok, port)
	}

	outs, err := drv.Outs()
	if err != nil || len(outs) == 0 {
		t.Fatalf("Outs() = %v, %v", outs, err)
	}
	if err := outs[0].Open(); err != nil {
		t.Fatalf("open out: %v", err)
	}
	send, err := midi.SendTo(outs[0])
	if err != nil {
		t.Fatalf("SendTo: %v", err)
	}

	if err := send(midi.NoteOn(0, 61, 90)); err != nil {
		t.Fatalf("send note on: %v", err)
	}
	ev := waitKey(t, keys)
	if !ev.on || ev.vel != 90 || ev.n.Pitch != 'c' || ev.n.Accidental != note.Sharp || ev.n.Octave != 0 {
		t.Errorf("note on = %+v, want C at velocity 90", ev)
	}
	if err := send(midi.NoteOff(0, 61)); err != nil {
		t.Fatalf("send note off: %v", err)
	}
	if ev := waitKey(t, keys); ev.on || ev.n.String() != "C" {
		t.Errorf("note off = %+v, want release of C", ev)
	}

	// Within the rescan interval nothing is rechecked.
	drv.unplug()
	w.Tick()
	if _, ok := w.Connected(); !ok {
		t.Fatal("disconnected before the rescan interval passed")
	}

	rescanNow(w)
	w.Tick()
	if name, ok := w.Connected(); ok {
		t.Errorf("Connected() = %q, true after unplug", name)
	}
	select {
	case <-gone:
	case <-time.After(2 * time.Second):
		t.Fatal("onDisconnect not called")
	}
}

func TestWatcherSkipsExcluded(t *testing.T) {
	w, drv, _, _ := newTestWatcher(t)

	ins, err := drv.Ins()
	if err != nil || len(ins) == 0 {
		t.Fatalf("Ins() = %v, %v", ins, err)
	}
	w.Excluded = []string{ins[0].String()}
	w.Tick()
	if name, ok := w.Connected(); ok {
		t.Errorf("Connected() = %q, true; want excluded port ignored", name)
	}

	// With nothing excluded the only input is picked even if not preferred.
	w.Excluded = nil
	w.Preferred = nil
	rescanNow(w)
	w.Tick()
	if name, ok := w.Connected(); !ok || name != ins[0].String() {
		t.Errorf("Connected() = %q, %v; want %q, true", name, ok, ins[0].String())
	}
}
