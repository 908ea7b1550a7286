package midibridge

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/chase3718/lou-keys/internal/note"
)

// DefaultPreferred lists port name patterns that are picked first.
var DefaultPreferred = []string{"Launchkey", "Novation", "volca", "KeyStep"}

// DefaultExcluded lists virtual and system ports that are never
// auto-connected.
var DefaultExcluded = []string{"Midi Through", "Through Port", "Dummy"}

const rescanInterval = time.Second

// NoteFunc receives key presses (on) and releases (!on).
type NoteFunc func(on bool, n note.Note, velocity uint8)

// Watcher keeps a connection to a MIDI keyboard. It handles hot-plug (a new
// device appears) and hot-unplug (the device disappears).
//
// onNote is called from the driver's listener goroutine. onDisconnect is
// called from its own goroutine when the active device is lost.
type Watcher struct {
	Preferred []string
	Excluded  []string

	mu           sync.Mutex
	drv          drivers.Driver
	ownDriver    bool
	inPort       drivers.In
	stopFn       func()
	connected    bool
	selectedName string
	lastRescanAt time.Time
	logger       *slog.Logger

	onNote       NoteFunc
	onDisconnect func()
}

// NewWatcher starts the rtmidi driver and returns a watcher on it. Call
// Close when done.
func NewWatcher(onNote NoteFunc, onDisconnect func(), logger *slog.Logger) (*Watcher, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv: %w", err)
	}
	w := NewWatcherWithDriver(drv, onNote, onDisconnect, logger)
	w.ownDriver = true
	return w, nil
}

// NewWatcherWithDriver watches inputs of an existing driver. The driver is
// not closed by Close.
func NewWatcherWithDriver(drv drivers.Driver, onNote NoteFunc, onDisconnect func(), logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		Preferred:    DefaultPreferred,
		Excluded:     DefaultExcluded,
		drv:          drv,
		logger:       logger,
		onNote:       onNote,
		onDisconnect: onDisconnect,
	}
}

// Connected returns the name of the active device, if any.
func (w *Watcher) Connected() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selectedName, w.connected
}

// Close shuts down the active connection and, if owned, the driver.
func (w *Watcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeConn()
	if w.ownDriver {
		_ = w.drv.Close()
	}
}

// Tick scans for devices, connects to a preferred one and notices when it
// goes away. Call it regularly; it rescans at most once a second.
func (w *Watcher) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	if !w.lastRescanAt.IsZero() && now.Sub(w.lastRescanAt) < rescanInterval {
		return
	}
	w.lastRescanAt = now

	inputs := w.listInputs()

	if w.connected {
		for _, n := range inputs {
			if n == w.selectedName {
				return
			}
		}
		w.logger.Warn("midi: device disappeared", "device", w.selectedName)
		w.closeConn()
		w.lastRescanAt = time.Time{}
		if w.onDisconnect != nil {
			go w.onDisconnect()
		}
		return
	}

	cand, ok := pickPreferred(inputs, w.Preferred)
	if !ok {
		return
	}
	if err := w.openByName(cand); err != nil {
		w.logger.Error("midi: connect failed", "device", cand, "err", err)
	}
}

func (w *Watcher) listInputs() []string {
	ins, err := w.drv.Ins()
	if err != nil {
		w.logger.Error("midi: list inputs failed", "err", err)
		return nil
	}
	all := make([]string, 0, len(ins))
	for _, in := range ins {
		all = append(all, in.String())
	}
	names := filterInputs(all, w.Excluded)
	w.logger.Debug("midi: inputs found", "count", len(names), "devices", strings.Join(names, ", "))
	return names
}

func filterInputs(names, excluded []string) []string {
	var out []string
	for _, name := range names {
		skip := false
		for _, pat := range excluded {
			if containsCI(name, pat) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, name)
		}
	}
	return out
}

// pickPreferred returns the first input matching a preferred pattern, or the
// only input when there is exactly one.
func pickPreferred(inputs, preferred []string) (string, bool) {
	for _, pat := range preferred {
		for _, name := range inputs {
			if containsCI(name, pat) {
				return name, true
			}
		}
	}
	if len(inputs) == 1 {
		return inputs[0], true
	}
	return "", false
}

func (w *Watcher) closeConn() {
	if w.stopFn != nil {
		w.stopFn()
		w.stopFn = nil
	}
	if w.inPort != nil {
		_ = w.inPort.Close()
		w.inPort = nil
	}
	w.connected = false
	w.selectedName = ""
}

func (w *Watcher) openByName(name string) error {
	ins, err := w.drv.Ins()
	if err != nil {
		return err
	}
	var found drivers.In
	for _, in := range ins {
		if in.String() == name {
			found = in
			break
		}
	}
	if found == nil {
		return fmt.Errorf("input %q not found", name)
	}
	if err := found.Open(); err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}

	stop, err := midi.ListenTo(found, func(msg midi.Message, _ int32) {
		var ch, key, vel uint8
		switch {
		case msg.GetNoteStart(&ch, &key, &vel):
			w.logger.Debug("midi: note on", "ch", ch, "key", key, "vel", vel)
			w.onNote(true, note.FromMIDIKey(int(key)), vel)
		case msg.GetNoteEnd(&ch, &key):
			w.logger.Debug("midi: note off", "ch", ch, "key", key)
			w.onNote(false, note.FromMIDIKey(int(key)), 0)
		default:
			w.logger.Debug("midi: unhandled message", "msg", msg.String())
		}
	}, midi.HandleError(func(listenErr error) {
		w.logger.Warn("midi: listener error", "device", name, "err", listenErr)
		// closeConn stops the listener, so it must not run on the
		// listener goroutine.
		go func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.connected && w.selectedName == name {
				w.closeConn()
				w.lastRescanAt = time.Time{}
				if w.onDisconnect != nil {
					go w.onDisconnect()
				}
			}
		}()
	}))
	if err != nil {
		_ = found.Close()
		return fmt.Errorf("listen %q: %w", name, err)
	}

	w.inPort = found
	w.stopFn = stop
	w.connected = true
	w.selectedName = name
	w.logger.Info("midi: connected", "device", name)
	return nil
}

func containsCI(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
