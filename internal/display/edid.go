package display

// parseEDIDName extracts the monitor marketing name from a raw EDID
// block. The four descriptor slots live at bytes 54-125, 18 bytes
// each; tag 0xFC marks the display product name, padded with 0x0A and
// spaces to 13 bytes.
func parseEDIDName(edid []byte) string {
	if len(edid) < 128 {
		return ""
	}
	for i := 54; i+18 <= 126; i += 18 {
		if edid[i+3] != 0xFC {
			continue
		}
		name := edid[i+5 : i+18]
		return trimEDIDText(name)
	}
	return ""
}

func trimEDIDText(b []byte) string {
	end := len(b)
	for end > 0 {
		switch b[end-1] {
		case 0x00, 0x0A, 0x20:
			end--
		default:
			return string(b[:end])
		}
	}
	return ""
}
