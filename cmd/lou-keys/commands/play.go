package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chase3718/lou-keys/internal/lineus"
	"github.com/chase3718/lou-keys/internal/player"
)

var (
	addrFlag   string
	serialFlag string
	baudFlag   int
)

var playCmd = &cobra.Command{
	Use:   "play <token>...",
	Short: "Play a melody on the Line-us",
	Example: `  lou-keys play c c g r A- A- f r c c g r A- A- A
  lou-keys play --serial /dev/ttyUSB0 -f tune.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := melodyTokens(args)
		if err != nil {
			return err
		}
		m, err := cfg.Mapper()
		if err != nil {
			return err
		}
		// Fail on bad tokens before touching the arm.
		if _, err := player.Plan(m, cfg.Tempo(), tokens); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		p := &player.Player{
			Pen:    conn,
			Mapper: m,
			Tempo:  cfg.Tempo(),
			RaiseZ: cfg.RaiseZ,
			Setup:  cfg.Setup,
			Logger: logger,
		}
		return p.Play(ctx, tokens)
	},
}

// connect opens the arm from flags, falling back to the config file.
func connect(ctx context.Context) (*lineus.Conn, error) {
	dev := cfg.Device
	if addrFlag != "" {
		dev.Address, dev.Serial = addrFlag, ""
	}
	if serialFlag != "" {
		dev.Serial = serialFlag
	}
	if baudFlag > 0 {
		dev.Baud = baudFlag
	}

	if dev.Serial != "" {
		return lineus.OpenSerial(dev.Serial, dev.Baud, logger)
	}
	return lineus.Dial(ctx, dev.Address, dev.Timeout, logger)
}

func addDeviceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&addrFlag, "addr", "", "arm network address (default "+lineus.DefaultAddr+")")
	cmd.Flags().StringVar(&serialFlag, "serial", "", "serial port device instead of the network")
	cmd.Flags().IntVar(&baudFlag, "baud", 0, "serial baud rate")
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ports, err := lineus.SerialPorts()
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), ports)
	},
}

func init() {
	addMelodyFlag(playCmd)
	addDeviceFlags(playCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(portsCmd)
}
