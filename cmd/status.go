package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kward/duskmon/internal/ipc"
)

var (
	keyStyle     = lipgloss.NewStyle().Bold(true)
	blankedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // Bright red
	awakeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))  // Green
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running daemon's monitor states and schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := ipc.Send(ipc.Request{Op: ipc.OpStatus})
		if err != nil {
			return err
		}
		printStatus(resp)
		return nil
	},
}

func printStatus(resp ipc.Response) {
	fmt.Printf("polling interval: %ds\n", resp.Interval)
	if len(resp.Monitors) == 0 {
		fmt.Println(dimStyle.Render("no monitors detected"))
		return
	}
	for i, m := range resp.Monitors {
		state := awakeStyle.Render("awake")
		if m.Blanked {
			state = blankedStyle.Render("blanked")
		}
		role := ""
		if m.Primary {
			role = dimStyle.Render(" (primary)")
		}
		fmt.Printf("%d. %s%s  %s  %s\n", i+1, keyStyle.Render(m.Name), role, m.Resolution, state)
		if m.Enabled {
			fmt.Printf("   auto-blank %s to %s  %s\n", m.Start, m.End, dimStyle.Render(m.Key))
		} else {
			fmt.Printf("   auto-blank disabled  %s\n", dimStyle.Render(m.Key))
		}
	}
}
