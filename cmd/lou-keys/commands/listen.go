package commands

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chase3718/lou-keys/internal/midibridge"
	"github.com/chase3718/lou-keys/internal/note"
	"github.com/chase3718/lou-keys/internal/player"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Tap keys live from a MIDI keyboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := cfg.Mapper()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		p := &player.Player{Pen: conn, Mapper: m, RaiseZ: cfg.RaiseZ, Logger: logger}
		for _, g := range cfg.Setup {
			if err := conn.SendGCode(g.Code, g.Args); err != nil {
				return err
			}
		}

		// onNote runs on the MIDI listener goroutine.
		var penMu sync.Mutex
		onNote := func(on bool, n note.Note, velocity uint8) {
			if !on {
				return
			}
			if !m.InRange(n) {
				logger.Warn("key outside keyboard range", "key", n.String(), "profile", m.Profile().Name)
				return
			}
			penMu.Lock()
			defer penMu.Unlock()
			if err := p.Tap(n); err != nil {
				logger.Error("tap failed", "key", n.String(), "err", err)
			}
		}
		onDisconnect := func() {
			logger.Warn("midi: disconnect, waiting for a keyboard")
		}

		watcher, err := midibridge.NewWatcher(onNote, onDisconnect, logger)
		if err != nil {
			return err
		}
		defer watcher.Close()

		logger.Info("running, waiting for MIDI device", "profile", m.Profile().Name)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		var device string
		for {
			watcher.Tick()
			if name, _ := watcher.Connected(); name != device {
				if name != "" {
					logger.Info("listening", "device", name, "profile", m.Profile().Name)
				}
				device = name
			}
			select {
			case <-ctx.Done():
				logger.Info("stopping")
				return nil
			case <-ticker.C:
			}
		}
	},
}

func init() {
	addDeviceFlags(listenCmd)
	rootCmd.AddCommand(listenCmd)
}
