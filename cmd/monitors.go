package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kward/duskmon/internal/display"
)

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "Enumerate connected monitors without a running daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := display.NewRegistry(display.NewAdapter())
		monitors := registry.Refresh()
		if len(monitors) == 0 {
			fmt.Println("no monitors detected")
			return nil
		}
		for i, m := range monitors {
			role := ""
			if m.Primary {
				role = " (primary)"
			}
			fmt.Printf("%d. %s%s\n", i+1, m.Name, role)
			fmt.Printf("   key:        %s\n", m.StableKey())
			fmt.Printf("   resolution: %s\n", m.Resolution())
			fmt.Printf("   position:   %d,%d\n", m.X, m.Y)
		}
		return nil
	},
}
