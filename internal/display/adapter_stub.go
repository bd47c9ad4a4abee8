//go:build !windows

package display

type stubAdapter struct{}

// NewAdapter returns the platform display adapter. On non-windows
// platforms every call reports ErrUnsupported.
func NewAdapter() Adapter {
	return &stubAdapter{}
}

func (a *stubAdapter) Devices() ([]string, error) {
	return nil, ErrUnsupported
}

func (a *stubAdapter) CurrentMode(device string) (Mode, error) {
	return Mode{}, ErrUnsupported
}

func (a *stubAdapter) SetMode(device string, mode Mode) error {
	return ErrUnsupported
}

func (a *stubAdapter) ForceRefreshAll() error {
	return ErrUnsupported
}
