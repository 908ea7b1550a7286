package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chase3718/lou-keys/internal/config"
	"github.com/chase3718/lou-keys/internal/player"
)

var (
	// Global flags
	debug       bool
	configPath  string
	profileName string
	bpm         int

	// cfg is loaded before every command runs
	cfg *config.Config
)

// logger is the package-wide structured logger. Safe to use before
// initLogger is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "lou-keys",
	Short: "Play toy keyboards with a Line-us drawing arm",
	Long: `lou-keys - turn a compact note notation into Line-us pen taps.

Notes are written as a letter, octave signs, a length and an optional glide:

  c        natural c, 1 unit
  a+2      a one octave up, 2 units
  C1       c sharp (uppercase = sharp; only C D F G A have one)
  a+2/F    a+2 gliding into f sharp
  r, r2    rest for 1 or 2 units

Settings are read from ~/.lou-keys/config.yaml.

Examples:
  lou-keys coords c c g r A- A- f
  lou-keys -p Stylophone play --serial /dev/ttyUSB0 c d e f g
  lou-keys export tune.mid c c g r A- A- f`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogger(debug)
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("profile") {
			c.Profile = profileName
		}
		if cmd.Flags().Changed("bpm") {
			c.BPM = bpm
		}
		cfg = c
		logger.Debug("config loaded", "path", c.Path(), "profile", c.Profile, "bpm", c.BPM)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging (adds source location)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.lou-keys/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "keyboard profile")
	rootCmd.PersistentFlags().IntVar(&bpm, "bpm", 0, "tempo in beats per minute")
}

var melodyFile string

// addMelodyFlag registers --file on commands that take a melody.
func addMelodyFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&melodyFile, "file", "f", "", "read tokens from a file (whitespace separated)")
}

// melodyTokens returns the tokens given as arguments followed by those read
// from --file.
func melodyTokens(args []string) ([]string, error) {
	tokens := append([]string(nil), args...)
	if melodyFile != "" {
		data, err := os.ReadFile(melodyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read melody: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if i := strings.IndexByte(line, '#'); i >= 0 {
				line = line[:i]
			}
			tokens = append(tokens, player.Tokens(line)...)
		}
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return tokens, nil
}
