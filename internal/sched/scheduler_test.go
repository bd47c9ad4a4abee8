package sched

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kward/duskmon/internal/config"
	"github.com/kward/duskmon/internal/display"
)

const (
	devMain = `\\.\DISPLAY1`
	devSide = `\\.\DISPLAY2`

	keyMain = "display-1_1920x1080"
	keySide = "display-2_1280x1024"
)

// fakeAdapter models the awkward parts of the real driver: a blanked
// device fails its mode query outright, and a global refresh
// reasserts the last non-blank mode of every device.
type fakeAdapter struct {
	devices    []string
	modes      map[string]display.Mode
	ground     map[string]display.Mode
	refreshErr error
	setCalls   int
}

func newFakeAdapter() *fakeAdapter {
	main := display.Mode{Width: 1920, Height: 1080, X: 0, Y: 0}
	side := display.Mode{Width: 1280, Height: 1024, X: 1920, Y: 0}
	return &fakeAdapter{
		devices: []string{devMain, devSide},
		modes:   map[string]display.Mode{devMain: main, devSide: side},
		ground:  map[string]display.Mode{devMain: main, devSide: side},
	}
}

func (f *fakeAdapter) Devices() ([]string, error) {
	return f.devices, nil
}

func (f *fakeAdapter) CurrentMode(device string) (display.Mode, error) {
	mode, ok := f.modes[device]
	if !ok {
		return display.Mode{}, fmt.Errorf("no such device %s", device)
	}
	if mode.IsBlank() {
		return display.Mode{}, errors.New("settings query failed")
	}
	return mode, nil
}

func (f *fakeAdapter) SetMode(device string, mode display.Mode) error {
	f.setCalls++
	f.modes[device] = mode
	if !mode.IsBlank() {
		f.ground[device] = mode
	}
	return nil
}

func (f *fakeAdapter) ForceRefreshAll() error {
	if f.refreshErr != nil {
		return f.refreshErr
	}
	for device, mode := range f.ground {
		f.modes[device] = mode
	}
	return nil
}

func at(h, m, s int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 23, h, m, s, 0, time.Local)
	}
}

func newTestScheduler(t *testing.T, adapter *fakeAdapter) (*Scheduler, *config.Store, *display.Tracker) {
	t.Helper()
	store, err := config.NewStore(filepath.Join(t.TempDir(), "duskmon.toml"))
	require.NoError(t, err)
	tracker := display.NewTracker()
	registry := display.NewRegistry(adapter)
	registry.Refresh()
	return New(registry, adapter, store, tracker), store, tracker
}

// enableSideSchedule gives the secondary monitor an overnight window;
// the primary stays disabled throughout.
func enableSideSchedule(t *testing.T, store *config.Store) {
	t.Helper()
	require.NoError(t, store.Save(keySide, config.Entry{
		Enabled: true,
		Start:   "20:00:00",
		End:     "06:00:00",
	}))
}

func TestReconcileBlanksOnlyScheduledMonitor(t *testing.T) {
	adapter := newFakeAdapter()
	s, store, tracker := newTestScheduler(t, adapter)
	enableSideSchedule(t, store)

	s.now = at(21, 0, 0)
	s.Reconcile()

	assert.True(t, adapter.modes[devSide].IsBlank(), "scheduled monitor should be blanked")
	assert.False(t, adapter.modes[devMain].IsBlank(), "primary must stay untouched")

	saved, ok := tracker.Peek(devSide)
	require.True(t, ok, "pre-blank geometry must be recorded")
	assert.Equal(t, display.Mode{Width: 1280, Height: 1024, X: 1920, Y: 0}, saved)
	assert.False(t, tracker.Has(devMain))
}

func TestReconcileIsIdempotentWhileBlanked(t *testing.T) {
	adapter := newFakeAdapter()
	s, store, tracker := newTestScheduler(t, adapter)
	enableSideSchedule(t, store)

	s.now = at(21, 0, 0)
	s.Reconcile()
	calls := adapter.setCalls
	original, _ := tracker.Peek(devSide)

	s.Reconcile()
	s.Reconcile()

	assert.Equal(t, calls, adapter.setCalls, "an already-blanked monitor must not be re-blanked")
	saved, ok := tracker.Peek(devSide)
	require.True(t, ok)
	assert.Equal(t, original, saved, "saved geometry must never be clobbered")
}

func TestReconcileRestoresAfterWindowExit(t *testing.T) {
	adapter := newFakeAdapter()
	s, store, tracker := newTestScheduler(t, adapter)
	enableSideSchedule(t, store)

	s.now = at(21, 0, 0)
	s.Reconcile()
	require.True(t, adapter.modes[devSide].IsBlank())

	s.now = at(6, 30, 0)
	s.Reconcile()

	assert.Equal(t, display.Mode{Width: 1280, Height: 1024, X: 1920, Y: 0}, adapter.modes[devSide],
		"window exit must trigger a restore pass")
	assert.False(t, tracker.HasAny(), "saved geometry is cleared after restore")

	// A further tick outside the window changes nothing.
	calls := adapter.setCalls
	s.Reconcile()
	assert.Equal(t, calls, adapter.setCalls)
}

func TestRestoreFallsBackToSavedGeometry(t *testing.T) {
	adapter := newFakeAdapter()
	s, store, tracker := newTestScheduler(t, adapter)
	enableSideSchedule(t, store)

	s.now = at(21, 0, 0)
	s.Reconcile()
	require.True(t, tracker.Has(devSide))

	adapter.refreshErr = errors.New("refresh rejected")
	s.now = at(6, 30, 0)
	s.Reconcile()

	assert.Equal(t, display.Mode{Width: 1280, Height: 1024, X: 1920, Y: 0}, adapter.modes[devSide],
		"per-device replay must restore the saved mode")
	assert.False(t, tracker.HasAny())
}

func TestDisabledMonitorsAreNeverTouched(t *testing.T) {
	adapter := newFakeAdapter()
	s, _, tracker := newTestScheduler(t, adapter)

	s.now = at(23, 0, 0)
	s.Reconcile()

	assert.Zero(t, adapter.setCalls)
	assert.False(t, tracker.HasAny())
}

func TestUnresolvableMonitorFailsOpen(t *testing.T) {
	adapter := newFakeAdapter()
	s, store, tracker := newTestScheduler(t, adapter)
	enableSideSchedule(t, store)

	// Shift the device's real geometry after the snapshot was taken
	// so nothing matches the monitor any more.
	adapter.modes[devSide] = display.Mode{Width: 1024, Height: 768, X: 500, Y: 500}
	adapter.ground[devSide] = adapter.modes[devSide]

	s.now = at(21, 0, 0)
	s.Reconcile()

	assert.False(t, adapter.modes[devSide].IsBlank(), "unresolvable monitors are left alone")
	assert.False(t, tracker.HasAny())
}

func TestManualBlankAndReset(t *testing.T) {
	adapter := newFakeAdapter()
	s, _, tracker := newTestScheduler(t, adapter)

	require.NoError(t, s.SetManualBlank(keySide))
	assert.True(t, adapter.modes[devSide].IsBlank())
	assert.True(t, tracker.Has(devSide))

	// Blanking again must not clobber the saved geometry.
	require.NoError(t, s.SetManualBlank(keySide))
	saved, _ := tracker.Peek(devSide)
	assert.Equal(t, display.Mode{Width: 1280, Height: 1024, X: 1920, Y: 0}, saved)

	require.NoError(t, s.ResetDisplays())
	assert.False(t, adapter.modes[devSide].IsBlank())
	assert.False(t, tracker.HasAny())
}

func TestManualBlankByIndex(t *testing.T) {
	adapter := newFakeAdapter()
	s, _, _ := newTestScheduler(t, adapter)

	require.NoError(t, s.SetManualBlank("2"))
	assert.True(t, adapter.modes[devSide].IsBlank())

	assert.Error(t, s.SetManualBlank("9"))
	assert.Error(t, s.SetManualBlank("no-such-monitor_0x0"))
}

func TestToggleAutoPersists(t *testing.T) {
	adapter := newFakeAdapter()
	s, store, _ := newTestScheduler(t, adapter)

	enabled, err := s.ToggleAuto(keySide)
	require.NoError(t, err)
	assert.True(t, enabled)

	entry := store.Load(keySide)
	assert.True(t, entry.Enabled)
	assert.Equal(t, "Display 2", entry.Name)
	assert.Equal(t, "1280x1024", entry.Resolution)

	enabled, err = s.ToggleAuto(keySide)
	require.NoError(t, err)
	assert.False(t, enabled)
	assert.False(t, store.Load(keySide).Enabled)
}

func TestSetSchedule(t *testing.T) {
	adapter := newFakeAdapter()
	s, store, _ := newTestScheduler(t, adapter)

	require.NoError(t, s.SetSchedule(keySide, "22:0:0", "7:0:0"))
	entry := store.Load(keySide)
	assert.Equal(t, "22:00:00", entry.Start)
	assert.Equal(t, "07:00:00", entry.End)

	assert.Error(t, s.SetSchedule(keySide, "25:00:00", "07:00:00"))
	assert.Error(t, s.SetSchedule("unknown_0x0", "22:00:00", "07:00:00"))
}

func TestStatus(t *testing.T) {
	adapter := newFakeAdapter()
	s, store, _ := newTestScheduler(t, adapter)
	enableSideSchedule(t, store)

	s.now = at(21, 0, 0)
	s.Reconcile()

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, keyMain, status[0].Key)
	assert.True(t, status[0].Primary)
	assert.False(t, status[0].Blanked)
	assert.Equal(t, keySide, status[1].Key)
	assert.True(t, status[1].Enabled)
	assert.True(t, status[1].Blanked)
	assert.Equal(t, "20:00:00", status[1].Start)
}

func TestArrangeDuplicate(t *testing.T) {
	adapter := newFakeAdapter()
	s, _, _ := newTestScheduler(t, adapter)

	require.NoError(t, s.ArrangeDuplicate())
	assert.Equal(t, display.Mode{Width: 1920, Height: 1080, X: 0, Y: 0}, adapter.modes[devSide])
}

func TestArrangeExtendRestoresBlankedFirst(t *testing.T) {
	adapter := newFakeAdapter()
	s, _, tracker := newTestScheduler(t, adapter)

	require.NoError(t, s.SetManualBlank(keySide))
	require.True(t, tracker.Has(devSide))

	require.NoError(t, s.ArrangeExtend())
	assert.Equal(t, display.Mode{Width: 1280, Height: 1024, X: 1920, Y: 0}, adapter.modes[devSide])
	assert.False(t, tracker.HasAny())
}

func TestArrangeNeedsTwoMonitors(t *testing.T) {
	adapter := newFakeAdapter()
	adapter.devices = []string{devMain}
	delete(adapter.modes, devSide)
	delete(adapter.ground, devSide)

	s, _, _ := newTestScheduler(t, adapter)
	assert.Error(t, s.ArrangeDuplicate())
	assert.Error(t, s.ArrangeExtend())
}
