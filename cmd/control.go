package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kward/duskmon/internal/ipc"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore every blanked display",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := ipc.Send(ipc.Request{Op: ipc.OpReset}); err != nil {
			return err
		}
		fmt.Println("displays restored")
		return nil
	},
}

var blankCmd = &cobra.Command{
	Use:   "blank <monitor>",
	Short: "Blank one monitor now (by stable key or 1-based index)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := ipc.Send(ipc.Request{Op: ipc.OpBlank, Key: args[0]}); err != nil {
			return err
		}
		fmt.Printf("monitor %s blanked\n", args[0])
		return nil
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <monitor>",
	Short: "Toggle a monitor's auto-blank schedule on or off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := ipc.Send(ipc.Request{Op: ipc.OpToggle, Key: args[0]})
		if err != nil {
			return err
		}
		if resp.Enabled != nil && *resp.Enabled {
			fmt.Printf("auto-blank enabled for %s\n", args[0])
		} else {
			fmt.Printf("auto-blank disabled for %s\n", args[0])
		}
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule <monitor> <start H:M:S> <end H:M:S>",
	Short: "Set a monitor's blanking window (start after end crosses midnight)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := ipc.Request{Op: ipc.OpSchedule, Key: args[0], Start: args[1], End: args[2]}
		if _, err := ipc.Send(req); err != nil {
			return err
		}
		fmt.Printf("schedule for %s set to %s-%s\n", args[0], args[1], args[2])
		return nil
	},
}

var arrangeCmd = &cobra.Command{
	Use:       "arrange <duplicate|extend>",
	Short:     "Rearrange monitors into duplicate or extend layout",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{ipc.ArrangeDuplicate, ipc.ArrangeExtend},
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := ipc.Send(ipc.Request{Op: ipc.OpArrange, Mode: args[0]}); err != nil {
			return err
		}
		fmt.Printf("%s mode applied\n", args[0])
		return nil
	},
}

var intervalCmd = &cobra.Command{
	Use:   "interval <seconds>",
	Short: "Set the scheduler polling interval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid interval %q", args[0])
		}
		resp, err := ipc.Send(ipc.Request{Op: ipc.OpInterval, Seconds: n})
		if err != nil {
			return err
		}
		fmt.Printf("polling interval set to %ds\n", resp.Interval)
		return nil
	},
}
