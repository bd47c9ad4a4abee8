package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	rootCmd = &cobra.Command{
		Use:   "duskmon",
		Short: "Duskmon - scheduled display blanking",
		Long: `Duskmon blanks and restores physical monitors on per-monitor
time-of-day schedules. It is built for kiosk-like multi-monitor hosts
where screens must go dark outside working hours and come back
without anyone touching the machine.

Run the daemon with "duskmon run"; every other command talks to the
running instance over the loopback control socket.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(blankCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(arrangeCmd)
	rootCmd.AddCommand(intervalCmd)
	rootCmd.AddCommand(monitorsCmd)
}
