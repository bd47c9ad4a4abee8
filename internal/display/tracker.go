package display

import "sync"

// Tracker records each device's last-known mode before a blank so it
// can be restored later. Entries exist only while the device is
// blanked by this process and are intentionally not persisted: after
// a restart the OS state is the new ground truth.
type Tracker struct {
	mu    sync.Mutex
	saved map[string]Mode
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{saved: make(map[string]Mode)}
}

// Record saves a device's pre-blank mode, overwriting any prior
// entry. Zero-size modes are rejected so a repeated blank can never
// replace real geometry with a blank reading.
func (t *Tracker) Record(device string, mode Mode) bool {
	if mode.IsBlank() {
		return false
	}
	t.mu.Lock()
	t.saved[device] = mode
	t.mu.Unlock()
	return true
}

// Peek returns a device's saved mode without removing it.
func (t *Tracker) Peek(device string) (Mode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mode, ok := t.saved[device]
	return mode, ok
}

// Take removes and returns a device's saved mode.
func (t *Tracker) Take(device string) (Mode, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mode, ok := t.saved[device]
	if ok {
		delete(t.saved, device)
	}
	return mode, ok
}

// Has reports whether a device has a saved mode, which is itself
// evidence that this process blanked it.
func (t *Tracker) Has(device string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.saved[device]
	return ok
}

// HasAny reports whether any device is currently tracked.
func (t *Tracker) HasAny() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.saved) > 0
}

// Devices returns the tracked device identifiers.
func (t *Tracker) Devices() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.saved))
	for device := range t.saved {
		out = append(out, device)
	}
	return out
}

// ClearAll drops every entry, used after a successful global restore.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	t.saved = make(map[string]Mode)
	t.mu.Unlock()
}
