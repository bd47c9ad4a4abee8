package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kward/duskmon/internal/config"
	"github.com/kward/duskmon/internal/display"
	"github.com/kward/duskmon/internal/ipc"
	"github.com/kward/duskmon/internal/logger"
	"github.com/kward/duskmon/internal/sched"
)

// shutdownGrace bounds how long shutdown waits for the loops to join.
const shutdownGrace = 5 * time.Second

var (
	configPath  string
	logFilePath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the blanking daemon in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "", "schedule file path (default: duskmon.toml next to the executable)")
	runCmd.Flags().StringVar(&logFilePath, "log-file", "", "also write logs to this file")
}

func runDaemon() error {
	if logFilePath != "" {
		if err := logger.EnableFileLogging(logFilePath); err != nil {
			logger.Warn("file logging unavailable", "error", err)
		}
		defer logger.CloseFileLogging()
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	store, err := config.NewStore(path)
	if err != nil {
		return err
	}
	logger.Info("schedule store ready", "path", store.Path())

	adapter := display.NewAdapter()
	tracker := display.NewTracker()
	registry := display.NewRegistry(adapter)
	monitors := registry.Refresh()
	if len(monitors) == 0 {
		logger.Warn("no monitors detected")
	}
	for _, m := range monitors {
		logger.Info("monitor detected",
			"key", m.StableKey(), "resolution", m.Resolution(),
			"position", fmt.Sprintf("%d,%d", m.X, m.Y), "primary", m.Primary)
	}

	scheduler := sched.New(registry, adapter, store, tracker)

	server := ipc.NewServer(&controlHandler{scheduler: scheduler, store: store})
	if err := server.Start(); err != nil {
		// Another instance holds the port: report it and leave that
		// instance alone.
		if resp, sendErr := ipc.Send(ipc.Request{Op: ipc.OpStatus}); sendErr == nil {
			fmt.Println("duskmon is already running:")
			printStatus(resp)
			return nil
		}
		return err
	}
	defer server.Stop()

	store.Watch(func() {
		logger.Info("schedule file reloaded", "path", store.Path())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	server.Stop()

	// Display state is deliberately left as-is on exit; a restart
	// treats the OS state as the new ground truth.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownGrace):
		logger.Warn("scheduler did not stop in time")
	}
	return nil
}

// controlHandler maps control-socket requests onto scheduler
// operations.
type controlHandler struct {
	scheduler *sched.Scheduler
	store     *config.Store
}

func (h *controlHandler) Handle(req ipc.Request) ipc.Response {
	switch req.Op {
	case ipc.OpStatus:
		return ipc.Response{
			OK:       true,
			Interval: h.store.Interval(),
			Monitors: h.scheduler.Status(),
		}
	case ipc.OpReset:
		if err := h.scheduler.ResetDisplays(); err != nil {
			return ipc.Fail(err)
		}
		return ipc.Response{OK: true}
	case ipc.OpBlank:
		if err := h.scheduler.SetManualBlank(req.Key); err != nil {
			return ipc.Fail(err)
		}
		return ipc.Response{OK: true}
	case ipc.OpToggle:
		enabled, err := h.scheduler.ToggleAuto(req.Key)
		if err != nil {
			return ipc.Fail(err)
		}
		return ipc.Response{OK: true, Enabled: &enabled}
	case ipc.OpSchedule:
		if err := h.scheduler.SetSchedule(req.Key, req.Start, req.End); err != nil {
			return ipc.Fail(err)
		}
		return ipc.Response{OK: true}
	case ipc.OpRefresh:
		h.scheduler.Refresh()
		return ipc.Response{OK: true, Monitors: h.scheduler.Status()}
	case ipc.OpArrange:
		var err error
		switch req.Mode {
		case ipc.ArrangeDuplicate:
			err = h.scheduler.ArrangeDuplicate()
		case ipc.ArrangeExtend:
			err = h.scheduler.ArrangeExtend()
		default:
			err = fmt.Errorf("unknown arrange mode %q", req.Mode)
		}
		if err != nil {
			return ipc.Fail(err)
		}
		return ipc.Response{OK: true}
	case ipc.OpInterval:
		if err := h.scheduler.SetInterval(req.Seconds); err != nil {
			return ipc.Fail(err)
		}
		return ipc.Response{OK: true, Interval: h.store.Interval()}
	default:
		return ipc.Fail(fmt.Errorf("unknown operation %q", req.Op))
	}
}
