package commands

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/chase3718/lou-keys/internal/note"
	"github.com/chase3718/lou-keys/internal/player"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <token>...",
	Short: "Show how note tokens are decoded and where they land",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := cfg.Mapper()
		if err != nil {
			return err
		}
		type decoded struct {
			Token string    `yaml:"token"`
			Note  note.Note `yaml:"note"`
			X     float64   `yaml:"x"`
			Y     float64   `yaml:"y"`
		}
		out := make([]decoded, 0, len(args))
		for _, raw := range args {
			x, y, err := m.CoordsOf(raw)
			if err != nil {
				return err
			}
			out = append(out, decoded{Token: raw, Note: note.MustDecode(raw), X: x, Y: y})
		}
		return writeYAML(cmd.OutOrStdout(), out)
	},
}

var coordsCmd = &cobra.Command{
	Use:   "coords <token>...",
	Short: "Show where the pen goes for a melody",
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := melodyTokens(args)
		if err != nil {
			return err
		}
		m, err := cfg.Mapper()
		if err != nil {
			return err
		}
		steps, err := player.Plan(m, cfg.Tempo(), tokens)
		if err != nil {
			return err
		}
		for i, st := range steps {
			if !st.IsRest() && !m.InRange(st.Path[0].Note) {
				logger.Warn("note outside keyboard range", "step", i, "token", st.Token, "profile", m.Profile().Name)
			}
		}
		return writeYAML(cmd.OutOrStdout(), steps)
	},
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func init() {
	addMelodyFlag(coordsCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(coordsCmd)
}
