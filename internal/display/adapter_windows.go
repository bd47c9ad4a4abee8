//go:build windows

package display

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/kward/duskmon/internal/logger"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumDisplayDevicesW     = user32.NewProc("EnumDisplayDevicesW")
	procEnumDisplaySettingsW    = user32.NewProc("EnumDisplaySettingsW")
	procChangeDisplaySettingsW  = user32.NewProc("ChangeDisplaySettingsW")
	procChangeDisplaySettingsEx = user32.NewProc("ChangeDisplaySettingsExW")
)

const (
	enumCurrentSettings  = 0xFFFFFFFF // ENUM_CURRENT_SETTINGS
	enumRegistrySettings = 0xFFFFFFFE // ENUM_REGISTRY_SETTINGS

	dmPosition   = 0x00000020
	dmPelsWidth  = 0x00080000
	dmPelsHeight = 0x00100000

	cdsUpdateRegistry = 0x00000001

	dispChangeSuccessful = 0

	ddAttachedToDesktop = 0x00000001
	ddMirroringDriver   = 0x00000008
)

// displayDevice mirrors the Win32 DISPLAY_DEVICEW layout.
type displayDevice struct {
	Cb           uint32
	DeviceName   [32]uint16
	DeviceString [128]uint16
	StateFlags   uint32
	DeviceID     [128]uint16
	DeviceKey    [128]uint16
}

// devMode mirrors the Win32 DEVMODEW layout for display devices. The
// X/Y fields overlay the dmPosition union used by display drivers.
type devMode struct {
	DeviceName         [32]uint16
	SpecVersion        uint16
	DriverVersion      uint16
	Size               uint16
	DriverExtra        uint16
	Fields             uint32
	X                  int32
	Y                  int32
	DisplayOrientation uint32
	DisplayFixedOutput uint32
	Color              int16
	Duplex             int16
	YResolution        int16
	TTOption           int16
	Collate            int16
	FormName           [32]uint16
	LogPixels          uint16
	BitsPerPel         uint32
	PelsWidth          uint32
	PelsHeight         uint32
	DisplayFlags       uint32
	DisplayFrequency   uint32
	ICMMethod          uint32
	ICMIntent          uint32
	MediaType          uint32
	DitherType         uint32
	Reserved1          uint32
	Reserved2          uint32
	PanningWidth       uint32
	PanningHeight      uint32
}

type windowsAdapter struct{}

// NewAdapter returns the platform display adapter.
func NewAdapter() Adapter {
	return &windowsAdapter{}
}

func (a *windowsAdapter) Devices() ([]string, error) {
	var devices []string
	for i := uint32(0); ; i++ {
		var dd displayDevice
		dd.Cb = uint32(unsafe.Sizeof(dd))
		ret, _, _ := procEnumDisplayDevicesW.Call(0, uintptr(i), uintptr(unsafe.Pointer(&dd)), 0)
		if ret == 0 {
			break
		}
		if dd.StateFlags&ddMirroringDriver != 0 {
			continue
		}
		if dd.StateFlags&ddAttachedToDesktop == 0 {
			continue
		}
		devices = append(devices, windows.UTF16ToString(dd.DeviceName[:]))
	}
	return devices, nil
}

func (a *windowsAdapter) CurrentMode(device string) (Mode, error) {
	dm, err := querySettings(device, enumCurrentSettings)
	if err != nil {
		return Mode{}, err
	}
	return Mode{
		Width:  int32(dm.PelsWidth),
		Height: int32(dm.PelsHeight),
		X:      dm.X,
		Y:      dm.Y,
	}, nil
}

func (a *windowsAdapter) SetMode(device string, mode Mode) error {
	// Start from the device's current settings so fields we do not
	// touch keep their values; a blanked device often cannot report
	// current settings, so fall back to the registry settings and
	// finally to a bare DEVMODE.
	dm, err := querySettings(device, enumCurrentSettings)
	if err != nil {
		if dm, err = querySettings(device, enumRegistrySettings); err != nil {
			dm = &devMode{}
			dm.Size = uint16(unsafe.Sizeof(*dm))
		}
	}
	dm.PelsWidth = uint32(mode.Width)
	dm.PelsHeight = uint32(mode.Height)
	dm.X = mode.X
	dm.Y = mode.Y
	dm.Fields = dmPelsWidth | dmPelsHeight | dmPosition

	name, err := windows.UTF16PtrFromString(device)
	if err != nil {
		return fmt.Errorf("invalid device name %q: %w", device, err)
	}
	ret, _, _ := procChangeDisplaySettingsEx.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(dm)),
		0, 0, 0,
	)
	if int32(ret) != dispChangeSuccessful {
		return &ApplyError{Device: device, Code: int32(ret)}
	}
	return nil
}

func (a *windowsAdapter) ForceRefreshAll() error {
	// ChangeDisplaySettings with a NULL DEVMODE reasserts the modes
	// stored in the registry across every device.
	ret, _, _ := procChangeDisplaySettingsW.Call(0, 0)
	if int32(ret) == dispChangeSuccessful {
		return nil
	}
	logger.Debug("global display refresh rejected, reapplying per device", "code", int32(ret))

	// Fallback: reapply each device's own settings.
	devices, err := a.Devices()
	if err != nil {
		return fmt.Errorf("device enumeration failed during refresh: %w", err)
	}
	refreshed := 0
	for _, device := range devices {
		dm, err := querySettings(device, enumCurrentSettings)
		if err != nil || dm.PelsWidth == 0 || dm.PelsHeight == 0 {
			continue
		}
		name, err := windows.UTF16PtrFromString(device)
		if err != nil {
			continue
		}
		r, _, _ := procChangeDisplaySettingsEx.Call(
			uintptr(unsafe.Pointer(name)),
			uintptr(unsafe.Pointer(dm)),
			0, cdsUpdateRegistry, 0,
		)
		if int32(r) == dispChangeSuccessful {
			refreshed++
		}
	}
	if refreshed == 0 {
		return fmt.Errorf("display refresh failed (code %d)", int32(ret))
	}
	return nil
}

func querySettings(device string, modeNum uint32) (*devMode, error) {
	name, err := windows.UTF16PtrFromString(device)
	if err != nil {
		return nil, fmt.Errorf("invalid device name %q: %w", device, err)
	}
	dm := &devMode{}
	dm.Size = uint16(unsafe.Sizeof(*dm))
	ret, _, _ := procEnumDisplaySettingsW.Call(
		uintptr(unsafe.Pointer(name)),
		uintptr(modeNum),
		uintptr(unsafe.Pointer(dm)),
	)
	if ret == 0 {
		return nil, fmt.Errorf("settings query failed for %s", device)
	}
	return dm, nil
}
