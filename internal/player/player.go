package player

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/chase3718/lou-keys/internal/keyboard"
	"github.com/chase3718/lou-keys/internal/note"
)

// DefaultRaiseZ is the pen height used when travelling between keys.
const DefaultRaiseZ = 1000

// Pen is the arm as seen by the player. *lineus.Conn implements it.
type Pen interface {
	MoveLinear(x, y, z float64) error
	SendGCode(code, args string) error
}

// GCode is a raw command sent once before playing.
type GCode struct {
	Code string `yaml:"code"`
	Args string `yaml:"args"`
}

// DefaultSetup slows the arm down enough to tap keys reliably.
var DefaultSetup = []GCode{{Code: "G94", Args: "P50"}}

// Player taps keys on one keyboard.
type Player struct {
	Pen    Pen
	Mapper *keyboard.Mapper
	Tempo  keyboard.Tempo
	RaiseZ float64
	Setup  []GCode
	Logger *slog.Logger

	// Sleep waits between moves. Nil means a context-aware time.Sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (p *Player) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func (p *Player) raiseZ() float64 {
	if p.RaiseZ > 0 {
		return p.RaiseZ
	}
	return DefaultRaiseZ
}

func (p *Player) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Play plans tokens, sends the setup commands and taps out the melody.
// Nothing moves if any token is invalid. On cancellation the pen is lifted
// before returning.
func (p *Player) Play(ctx context.Context, tokens []string) error {
	steps, err := Plan(p.Mapper, p.Tempo, tokens)
	if err != nil {
		return err
	}
	log := p.logger().With("session", uuid.NewString())
	log.Info("player: starting",
		"profile", p.Mapper.Profile().Name,
		"bpm", p.Tempo.BPM,
		"steps", len(steps),
	)

	for _, g := range p.Setup {
		if err := p.Pen.SendGCode(g.Code, g.Args); err != nil {
			return fmt.Errorf("player: setup %s %s: %w", g.Code, g.Args, err)
		}
	}

	last, err := p.play(ctx, log, steps)
	if err != nil {
		if last != nil {
			// Leave the pen up so it does not drag over the keys.
			if lerr := p.Pen.MoveLinear(last.X, last.Y, p.raiseZ()); lerr != nil {
				log.Warn("player: could not lift pen", "err", lerr)
			}
		}
		return err
	}
	log.Info("player: finished")
	return nil
}

func (p *Player) play(ctx context.Context, log *slog.Logger, steps []Step) (*Point, error) {
	var last *Point
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return last, err
		}
		if st.IsRest() {
			log.Debug("player: rest", "step", i, "delay_ms", st.Rest.Milliseconds())
			if err := p.sleep(ctx, st.Rest); err != nil {
				return last, err
			}
			continue
		}

		first := st.Path[0]
		if !p.Mapper.InRange(first.Note) {
			log.Warn("player: note outside keyboard range", "step", i, "token", st.Token, "y", first.Y)
		}
		log.Debug("player: note", "step", i, "token", st.Token, "x", first.X, "y", first.Y)

		if err := p.Pen.MoveLinear(first.X, first.Y, p.raiseZ()); err != nil {
			return last, fmt.Errorf("player: step %d: %w", i, err)
		}
		for j := range st.Path {
			pt := &st.Path[j]
			last = pt
			if err := p.Pen.MoveLinear(pt.X, pt.Y, 0); err != nil {
				return last, fmt.Errorf("player: step %d: %w", i, err)
			}
			if err := p.sleep(ctx, pt.Hold); err != nil {
				return last, err
			}
		}
		if err := p.Pen.MoveLinear(last.X, last.Y, p.raiseZ()); err != nil {
			return last, fmt.Errorf("player: step %d: %w", i, err)
		}
	}
	return nil, nil
}

// Tap presses the key for n once, without holding it.
func (p *Player) Tap(n note.Note) error {
	x, y := p.Mapper.Coords(n)
	p.logger().Debug("player: tap", "key", n.Name(), "octave", n.Octave, "x", x, "y", y)
	if err := p.Pen.MoveLinear(x, y, p.raiseZ()); err != nil {
		return err
	}
	if err := p.Pen.MoveLinear(x, y, 0); err != nil {
		return err
	}
	return p.Pen.MoveLinear(x, y, p.raiseZ())
}
