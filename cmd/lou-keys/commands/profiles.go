package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/chase3718/lou-keys/internal/keyboard"
)

var (
	primary    = lipgloss.Color("#00ff9f")
	dim        = lipgloss.Color("#6e7681")
	headStyle  = lipgloss.NewStyle().Bold(true).Foreground(primary).Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	markStyle  = lipgloss.NewStyle().Foreground(primary).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(primary)
	helpStyle  = lipgloss.NewStyle().Foreground(dim)
)

var useProfile string

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List keyboard profiles",
	Example: `  lou-keys profiles
  lou-keys profiles --use Stylophone`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := cfg.Registry()
		if err != nil {
			return err
		}
		if useProfile != "" {
			if _, err := keyboard.NewMapper(reg, useProfile); err != nil {
				return err
			}
			cfg.Profile = useProfile
			if err := cfg.Save(); err != nil {
				return err
			}
			logger.Info("default profile saved", "profile", useProfile, "path", cfg.Path())
		}
		current := cfg.Profile
		if current == "" {
			current = keyboard.DefaultProfile
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderProfiles(reg, current))
		return nil
	},
}

func renderProfiles(reg keyboard.Registry, current string) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	names := reg.Names()
	rows := make([][]string, 0, len(names))
	currentRow := -1
	for _, name := range names {
		p, _ := reg.Lookup(name)
		m, err := keyboard.NewMapper(reg, name)
		spacing := "-"
		if err == nil {
			spacing = strconv.FormatFloat(m.Spacing(), 'f', 1, 64)
		}
		if name == current {
			currentRow = len(rows)
		}
		rows = append(rows, []string{
			name,
			p.HighNote + " @ " + f(p.HighY),
			p.LowNote + " @ " + f(p.LowY),
			f(p.NaturalX),
			f(p.SharpX),
			spacing,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(primary)).
		Headers("PROFILE", "HIGH", "LOW", "NATURAL X", "SHARP X", "SPACING").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headStyle
			case row == currentRow && col == 0:
				return markStyle
			default:
				return cellStyle
			}
		})

	return titleStyle.Render("Keyboard profiles") + "\n" +
		t.Render() + "\n" +
		helpStyle.Render("current: "+current)
}

func init() {
	profilesCmd.Flags().StringVar(&useProfile, "use", "", "save this profile as the default in the config file")
	rootCmd.AddCommand(profilesCmd)
}
