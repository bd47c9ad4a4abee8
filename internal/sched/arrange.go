package sched

import (
	"fmt"

	"github.com/kward/duskmon/internal/display"
	"github.com/kward/duskmon/internal/logger"
)

// ArrangeDuplicate mirrors every secondary monitor onto the primary's
// origin and resolution. Blanked monitors are restored first so they
// take part in the arrangement.
func (s *Scheduler) ArrangeDuplicate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	monitors, primary, err := s.prepareArrange()
	if err != nil {
		return err
	}

	target := display.Mode{Width: primary.Width, Height: primary.Height}
	applied := 0
	for _, m := range monitors {
		if m.Primary {
			continue
		}
		device, ok := s.registry.ResolveDevice(m, s.tracker)
		if !ok {
			logger.Warn("cannot resolve device for duplicate mode", "monitor", m.StableKey())
			continue
		}
		if err := s.adapter.SetMode(device, target); err != nil {
			logger.Warn("duplicate mode change failed", "monitor", m.StableKey(), "error", err)
			continue
		}
		applied++
	}
	s.registry.Refresh()
	if applied == 0 {
		return fmt.Errorf("duplicate mode applied to no monitor")
	}
	return nil
}

// ArrangeExtend lays monitors out left to right: the primary at the
// origin, each secondary to the right of the previous one at its own
// resolution.
func (s *Scheduler) ArrangeExtend() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	monitors, primary, err := s.prepareArrange()
	if err != nil {
		return err
	}

	if device, ok := s.registry.ResolveDevice(primary, s.tracker); ok {
		mode := display.Mode{Width: primary.Width, Height: primary.Height}
		if err := s.adapter.SetMode(device, mode); err != nil {
			logger.Warn("extend mode change failed for primary", "error", err)
		}
	}

	xOffset := primary.Width
	for _, m := range monitors {
		if m.Primary {
			continue
		}
		device, ok := s.registry.ResolveDevice(m, s.tracker)
		if !ok {
			logger.Warn("cannot resolve device for extend mode", "monitor", m.StableKey())
			continue
		}
		mode := display.Mode{Width: m.Width, Height: m.Height, X: xOffset}
		if err := s.adapter.SetMode(device, mode); err != nil {
			logger.Warn("extend mode change failed", "monitor", m.StableKey(), "error", err)
			continue
		}
		xOffset += m.Width
	}
	s.registry.Refresh()
	return nil
}

// prepareArrange restores any blanked monitors, refreshes the
// snapshot and checks that an arrangement makes sense.
func (s *Scheduler) prepareArrange() ([]*display.Monitor, *display.Monitor, error) {
	if s.tracker.HasAny() {
		if err := s.restoreAll(); err != nil {
			logger.Warn("restore before arrangement failed", "error", err)
		}
	}
	monitors := s.registry.Refresh()
	if len(monitors) < 2 {
		return nil, nil, fmt.Errorf("arrangement needs at least two monitors, found %d", len(monitors))
	}
	primary := s.registry.Primary()
	if primary == nil {
		return nil, nil, fmt.Errorf("no primary monitor found")
	}
	return monitors, primary, nil
}
