//go:build windows

package display

import (
	"golang.org/x/sys/windows/registry"

	"github.com/kward/duskmon/internal/logger"
)

const displayEnumKey = `SYSTEM\CurrentControlSet\Enum\DISPLAY`

// monitorNames reads monitor marketing names from the EDID blobs the
// driver stores in the registry, in enumeration order. Missing or
// unparsable entries are skipped; callers fall back to generated
// names.
func monitorNames() []string {
	root, err := registry.OpenKey(registry.LOCAL_MACHINE, displayEnumKey, registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		logger.Debug("display registry key unavailable", "error", err)
		return nil
	}
	defer root.Close()

	models, err := root.ReadSubKeyNames(-1)
	if err != nil {
		return nil
	}

	var names []string
	for _, model := range models {
		modelKey, err := registry.OpenKey(root, model, registry.ENUMERATE_SUB_KEYS)
		if err != nil {
			continue
		}
		instances, err := modelKey.ReadSubKeyNames(-1)
		if err != nil {
			modelKey.Close()
			continue
		}
		for _, instance := range instances {
			paramsKey, err := registry.OpenKey(modelKey, instance+`\Device Parameters`, registry.QUERY_VALUE)
			if err != nil {
				continue
			}
			edid, _, err := paramsKey.GetBinaryValue("EDID")
			paramsKey.Close()
			if err != nil {
				continue
			}
			if name := parseEDIDName(edid); name != "" {
				names = append(names, name)
			}
		}
		modelKey.Close()
	}
	return names
}
