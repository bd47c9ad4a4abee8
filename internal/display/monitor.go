package display

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kward/duskmon/internal/logger"
)

// Monitor is the identity and geometry of one physical display at
// enumeration time. A refresh produces a fresh list; monitors are
// never mutated in place. Components that outlive a refresh hold the
// stable key, not the Monitor.
type Monitor struct {
	Index   int
	Name    string
	Width   int32
	Height  int32
	X       int32
	Y       int32
	Primary bool

	key string
}

// StableKey identifies the monitor across OS device-name churn. It is
// derived from the monitor name and resolution, so two identical
// monitors at the same resolution would collide; the registry breaks
// such ties by appending the enumeration ordinal, which stays stable
// as long as physical wiring does.
func (m *Monitor) StableKey() string {
	return m.key
}

// Resolution returns the monitor's resolution as "WxH".
func (m *Monitor) Resolution() string {
	return fmt.Sprintf("%dx%d", m.Width, m.Height)
}

// Mode returns the monitor's geometry as a display mode.
func (m *Monitor) Mode() Mode {
	return Mode{Width: m.Width, Height: m.Height, X: m.X, Y: m.Y}
}

// GeometryLookup is the saved-geometry fallback consulted when a
// device's mode query fails during resolution. The Tracker satisfies
// it.
type GeometryLookup interface {
	Peek(device string) (Mode, bool)
}

// Registry enumerates connected displays and maps each to its stable
// key. It holds a snapshot that is replaced wholesale on Refresh and
// tolerates concurrent readers.
type Registry struct {
	mu       sync.RWMutex
	adapter  Adapter
	names    func() []string
	monitors []*Monitor
}

// NewRegistry creates a registry over the given adapter. Human
// monitor names come from the platform name source (EDID on windows)
// when available.
func NewRegistry(adapter Adapter) *Registry {
	return &Registry{
		adapter: adapter,
		names:   monitorNames,
	}
}

// Refresh re-enumerates displays and replaces the snapshot. It never
// fails: on total enumeration failure the condition is logged and the
// snapshot becomes empty.
func (r *Registry) Refresh() []*Monitor {
	monitors := r.enumerate()

	r.mu.Lock()
	r.monitors = monitors
	r.mu.Unlock()

	return monitors
}

// Monitors returns the current snapshot in OS enumeration order.
func (r *Registry) Monitors() []*Monitor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Monitor, len(r.monitors))
	copy(out, r.monitors)
	return out
}

// ByKey returns the snapshot monitor with the given stable key.
func (r *Registry) ByKey(key string) (*Monitor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.monitors {
		if m.key == key {
			return m, true
		}
	}
	return nil, false
}

// ByIndex returns the snapshot monitor at the given enumeration index.
func (r *Registry) ByIndex(i int) (*Monitor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.monitors) {
		return nil, false
	}
	return r.monitors[i], true
}

// Primary returns the primary monitor, falling back to the first.
func (r *Registry) Primary() *Monitor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.monitors {
		if m.Primary {
			return m
		}
	}
	if len(r.monitors) > 0 {
		return r.monitors[0]
	}
	return nil
}

// ResolveDevice maps a monitor to its current OS device identifier by
// comparing the monitor's geometry against each device's current
// mode. A device that is blanked cannot report its mode, so any saved
// geometry recorded for it is matched instead. Returns false when no
// device matches either way.
func (r *Registry) ResolveDevice(m *Monitor, saved GeometryLookup) (string, bool) {
	devices, err := r.adapter.Devices()
	if err != nil {
		logger.Warn("device enumeration failed during resolve", "error", err)
		return "", false
	}
	want := m.Mode()
	for _, device := range devices {
		mode, err := r.adapter.CurrentMode(device)
		if err == nil && !mode.IsBlank() {
			if mode == want {
				return device, true
			}
			continue
		}
		if saved == nil {
			continue
		}
		if g, ok := saved.Peek(device); ok && g == want {
			return device, true
		}
	}
	return "", false
}

func (r *Registry) enumerate() []*Monitor {
	devices, err := r.adapter.Devices()
	if err != nil {
		logger.Error("monitor enumeration failed", "error", err)
		return nil
	}

	var names []string
	if r.names != nil {
		names = r.names()
	}

	var monitors []*Monitor
	for _, device := range devices {
		mode, err := r.adapter.CurrentMode(device)
		if err != nil || mode.IsBlank() {
			// A device blanked by us (or detached) has no usable
			// geometry; it reappears on the refresh after a restore.
			continue
		}
		i := len(monitors)
		name := fmt.Sprintf("Display %d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		monitors = append(monitors, &Monitor{
			Index:  i,
			Name:   name,
			Width:  mode.Width,
			Height: mode.Height,
			X:      mode.X,
			Y:      mode.Y,
		})
	}

	assignStableKeys(monitors)
	markPrimary(monitors)
	return monitors
}

// assignStableKeys derives each monitor's stable key from its name
// and resolution, appending the ordinal for later duplicates.
func assignStableKeys(monitors []*Monitor) {
	seen := make(map[string]int, len(monitors))
	for _, m := range monitors {
		base := fmt.Sprintf("%s_%s", sanitizeKey(m.Name), m.Resolution())
		seen[base]++
		if n := seen[base]; n > 1 {
			m.key = fmt.Sprintf("%s_%d", base, n)
		} else {
			m.key = base
		}
	}
}

// markPrimary marks the monitor at the virtual-screen origin as
// primary, with the first monitor as fallback.
func markPrimary(monitors []*Monitor) {
	for _, m := range monitors {
		if m.X == 0 && m.Y == 0 {
			m.Primary = true
			return
		}
	}
	if len(monitors) > 0 {
		monitors[0].Primary = true
	}
}

// sanitizeKey lowercases a monitor name and folds everything outside
// [a-z0-9-] to '-', keeping keys safe as config table names.
func sanitizeKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
