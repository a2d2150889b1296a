package blend

// div255 divides x by 255 with rounding, without using division.
//
// Formula: t = x + 128; (t + (t >> 8)) >> 8
//
// This is exact round(x / 255) for every product of two bytes.
func div255(x uint16) uint16 {
	t := uint32(x) + 128
	return uint16((t + (t >> 8)) >> 8)
}

// mulDiv255 multiplies two bytes and divides by 255 with rounding.
func mulDiv255(a, b byte) byte {
	return byte(div255(uint16(a) * uint16(b)))
}

// inv255 computes 255 - x (inverse alpha).
func inv255(x byte) byte {
	return 255 - x
}

// addClamp adds two bytes and clamps to 255.
func addClamp(a, b byte) byte {
	sum := uint16(a) + uint16(b)
	if sum > 255 {
		return 255
	}
	return byte(sum)
}

// opacityByte converts an opacity in [0, 1] to 0-255, clamping out-of-range
// values.
func opacityByte(opacity float64) byte {
	switch {
	case opacity <= 0:
		return 0
	case opacity >= 1:
		return 255
	default:
		return byte(opacity*255 + 0.5)
	}
}
