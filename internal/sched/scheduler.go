package sched

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kward/duskmon/internal/config"
	"github.com/kward/duskmon/internal/display"
	"github.com/kward/duskmon/internal/logger"
)

// Scheduler reconciles actual display state against each monitor's
// blanking window once per polling tick, and serves the manual
// operations the control surface invokes between ticks.
type Scheduler struct {
	registry *display.Registry
	adapter  display.Adapter
	store    *config.Store
	tracker  *display.Tracker

	// now is injectable for tests.
	now func() time.Time

	// mu serializes reconcile ticks against manual operations.
	mu sync.Mutex
}

// New wires a scheduler over its collaborators.
func New(registry *display.Registry, adapter display.Adapter, store *config.Store, tracker *display.Tracker) *Scheduler {
	return &Scheduler{
		registry: registry,
		adapter:  adapter,
		store:    store,
		tracker:  tracker,
		now:      time.Now,
	}
}

// Run polls until the context is cancelled. The interval is re-read
// from the store every iteration so edits take effect without a
// restart. The loop itself never terminates on error.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info("scheduler started", "interval", s.store.Interval())
	for {
		interval := time.Duration(s.store.Interval()) * time.Second
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-time.After(interval):
			s.Reconcile()
		}
	}
}

// Reconcile runs one scheduler tick over every monitor in the current
// snapshot. Per-monitor failures are logged and do not stop the pass.
func (s *Scheduler) Reconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	nowSeconds := now.Hour()*3600 + now.Minute()*60 + now.Second()

	for _, m := range s.registry.Monitors() {
		if err := s.reconcileMonitor(m, nowSeconds); err != nil {
			logger.Warn("monitor reconcile failed", "monitor", m.StableKey(), "error", err)
		}
	}
}

// reconcileMonitor applies the per-monitor transition function:
// in-window and awake blanks it, out-of-window and blanked triggers a
// restore-all pass. Disabled monitors are never touched.
func (s *Scheduler) reconcileMonitor(m *display.Monitor, nowSeconds int) error {
	entry := s.store.Load(m.StableKey())
	if !entry.Enabled {
		return nil
	}
	window, err := ParseWindow(entry.Start, entry.End)
	if err != nil {
		return fmt.Errorf("unusable schedule: %w", err)
	}

	inWindow := window.Contains(nowSeconds)
	on := s.isOn(m)
	switch {
	case inWindow && on:
		logger.Info("blanking monitor", "monitor", m.StableKey(), "window", window.Start.String()+"-"+window.End.String())
		return s.blank(m)
	case !inWindow && !on:
		logger.Info("window exited, restoring displays", "monitor", m.StableKey())
		return s.restoreAll()
	}
	return nil
}

// isOn queries a monitor's actual state. An unresolvable device is
// treated as awake (fail open). A saved-geometry entry is itself
// sufficient evidence of blanked, taking priority over the mode
// query, which frequently fails outright on a blanked device.
func (s *Scheduler) isOn(m *display.Monitor) bool {
	device, ok := s.registry.ResolveDevice(m, s.tracker)
	if !ok {
		return true
	}
	if s.tracker.Has(device) {
		return false
	}
	mode, err := s.adapter.CurrentMode(device)
	if err != nil {
		return false
	}
	return !mode.IsBlank()
}

// blank captures the device's current mode and applies the zero-size
// mode. The capture only stores verified non-zero geometry, so a
// repeated blank can never clobber the saved mode.
func (s *Scheduler) blank(m *display.Monitor) error {
	device, ok := s.registry.ResolveDevice(m, s.tracker)
	if !ok {
		return fmt.Errorf("no device matches monitor %s", m.StableKey())
	}
	if mode, err := s.adapter.CurrentMode(device); err == nil {
		s.tracker.Record(device, mode)
	}
	if err := s.adapter.SetMode(device, display.Mode{}); err != nil {
		return fmt.Errorf("blank failed: %w", err)
	}
	return nil
}

// restoreAll is a global reconciliation pass rather than a per-device
// restore: individual mode-restore calls on a blanked device are
// unreliable, so the whole topology is reasserted. Waking any one
// monitor re-asserts every other monitor's last-known geometry too.
func (s *Scheduler) restoreAll() error {
	err := s.adapter.ForceRefreshAll()
	if err == nil {
		s.tracker.ClearAll()
		return nil
	}
	logger.Warn("global display refresh failed, replaying saved geometry", "error", err)

	restored := 0
	var lastErr error
	for _, device := range s.tracker.Devices() {
		mode, ok := s.tracker.Peek(device)
		if !ok {
			continue
		}
		if err := s.adapter.SetMode(device, mode); err != nil {
			lastErr = err
			logger.Warn("saved geometry replay failed", "device", device, "error", err)
			continue
		}
		s.tracker.Take(device)
		restored++
	}
	if restored == 0 && lastErr != nil {
		return fmt.Errorf("restore failed: %w", lastErr)
	}
	return nil
}

// ToggleAuto flips a monitor's auto-blank enablement and persists it
// immediately. Returns the new state.
func (s *Scheduler) ToggleAuto(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMonitor(key)
	if err != nil {
		return false, err
	}
	entry := s.store.Load(m.StableKey())
	entry.Enabled = !entry.Enabled
	entry.Name = m.Name
	entry.Resolution = m.Resolution()
	if err := s.store.Save(m.StableKey(), entry); err != nil {
		return false, fmt.Errorf("failed to persist schedule: %w", err)
	}
	logger.Info("auto blanking toggled", "monitor", m.StableKey(), "enabled", entry.Enabled)
	return entry.Enabled, nil
}

// SetSchedule updates a monitor's blanking window and persists it.
func (s *Scheduler) SetSchedule(key, start, end string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMonitor(key)
	if err != nil {
		return err
	}
	window, err := ParseWindow(start, end)
	if err != nil {
		return err
	}
	entry := s.store.Load(m.StableKey())
	entry.Start = window.Start.String()
	entry.End = window.End.String()
	entry.Name = m.Name
	entry.Resolution = m.Resolution()
	if err := s.store.Save(m.StableKey(), entry); err != nil {
		return fmt.Errorf("failed to persist schedule: %w", err)
	}
	return nil
}

// SetManualBlank blanks one monitor immediately, with the same
// capture rules as the scheduled path.
func (s *Scheduler) SetManualBlank(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.findMonitor(key)
	if err != nil {
		return err
	}
	logger.Info("manual blank", "monitor", m.StableKey())
	return s.blank(m)
}

// ResetDisplays runs the restore-all pass on demand.
func (s *Scheduler) ResetDisplays() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Info("resetting displays")
	return s.restoreAll()
}

// Refresh re-enumerates the monitor snapshot.
func (s *Scheduler) Refresh() []*display.Monitor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.Refresh()
}

// SetInterval persists the polling interval; the loop picks it up on
// its next iteration.
func (s *Scheduler) SetInterval(seconds int) error {
	return s.store.SetInterval(seconds)
}

// MonitorStatus is one monitor's reportable state.
type MonitorStatus struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Resolution string `json:"resolution"`
	Primary    bool   `json:"primary"`
	Blanked    bool   `json:"blanked"`
	Enabled    bool   `json:"enabled"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

// Status reports every monitor in the snapshot with its schedule and
// derived awake/blanked state.
func (s *Scheduler) Status() []MonitorStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	monitors := s.registry.Monitors()
	out := make([]MonitorStatus, 0, len(monitors))
	for _, m := range monitors {
		entry := s.store.Load(m.StableKey())
		out = append(out, MonitorStatus{
			Key:        m.StableKey(),
			Name:       m.Name,
			Resolution: m.Resolution(),
			Primary:    m.Primary,
			Blanked:    !s.isOn(m),
			Enabled:    entry.Enabled,
			Start:      entry.Start,
			End:        entry.End,
		})
	}
	return out
}

// findMonitor accepts either a stable key or a 1-based enumeration
// index.
func (s *Scheduler) findMonitor(key string) (*display.Monitor, error) {
	if m, ok := s.registry.ByKey(key); ok {
		return m, nil
	}
	if n, err := strconv.Atoi(key); err == nil {
		if m, ok := s.registry.ByIndex(n - 1); ok {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unknown monitor %q", key)
}
