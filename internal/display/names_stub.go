//go:build !windows

package display

// monitorNames has no name source off windows; the registry generates
// "Display N" names instead.
func monitorNames() []string {
	return nil
}
