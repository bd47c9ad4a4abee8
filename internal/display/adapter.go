// Package display handles monitor enumeration, display-mode control
// and pre-blank state tracking.
package display

import (
	"errors"
	"fmt"
)

// Mode is one device's display mode: resolution plus position in
// virtual-screen coordinates. Width and height both zero is the blank
// mode the OS driver accepts as "off"; the adapter does not
// special-case it, callers decide.
type Mode struct {
	Width  int32
	Height int32
	X      int32
	Y      int32
}

// IsBlank reports whether the mode is the zero-size "off" mode.
func (m Mode) IsBlank() bool {
	return m.Width == 0 && m.Height == 0
}

func (m Mode) String() string {
	return fmt.Sprintf("%dx%d@%d,%d", m.Width, m.Height, m.X, m.Y)
}

// Adapter wraps the OS display-mode API. Every call may fail due to
// OS or driver rejection; failures are non-fatal to callers, which
// degrade gracefully and retry on the next pass.
type Adapter interface {
	// Devices returns OS device identifiers in enumeration order.
	Devices() ([]string, error)

	// CurrentMode queries a device's current mode. Queries on a
	// blanked device frequently fail outright.
	CurrentMode(device string) (Mode, error)

	// SetMode applies a mode to a device. A zero-size mode blanks it.
	SetMode(device string, mode Mode) error

	// ForceRefreshAll reasserts current mode settings process-wide as
	// a best-effort way to wake any blanked device without needing
	// per-device saved geometry.
	ForceRefreshAll() error
}

// ErrUnsupported is returned by every call on platforms without
// display-mode control.
var ErrUnsupported = errors.New("display mode control is only available on windows")

// ApplyError carries the OS status code from a rejected mode change.
type ApplyError struct {
	Device string
	Code   int32
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("mode change rejected for %s (code %d)", e.Device, e.Code)
}
