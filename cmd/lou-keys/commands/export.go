package commands

import (
	"github.com/spf13/cobra"

	"github.com/chase3718/lou-keys/internal/midibridge"
	"github.com/chase3718/lou-keys/internal/player"
)

var exportCmd = &cobra.Command{
	Use:   "export <file.mid> <token>...",
	Short: "Write a melody as a MIDI file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := melodyTokens(args[1:])
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
		if err := midibridge.ExportFile(args[0], steps, cfg.Tempo()); err != nil {
			return err
		}
		logger.Info("midi file written", "path", args[0], "steps", len(steps))
		return nil
	},
}

func init() {
	addMelodyFlag(exportCmd)
	rootCmd.AddCommand(exportCmd)
}
