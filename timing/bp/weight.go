package bp

// Weight is a signed perceptron weight. Storage is 16 bits wide; the
// effective width is set by Bounds.
type Weight int16

// Bounds is the inclusive saturation range of a weight.
type Bounds struct {
	Min Weight
	Max Weight
}

// BoundsForBits returns the two's complement range of a bits-wide weight,
// e.g. [-128, 127] for 8 bits.
func BoundsForBits(bits uint) Bounds {
	lim := int32(1) << (bits - 1)
	return Bounds{Min: Weight(-lim), Max: Weight(lim - 1)}
}

// Inc returns w+1, saturating at b.Max.
func (w Weight) Inc(b Bounds) Weight {
	if w >= b.Max {
		return b.Max
	}
	return w + 1
}

// Dec returns w-1, saturating at b.Min.
func (w Weight) Dec(b Bounds) Weight {
	if w <= b.Min {
		return b.Min
	}
	return w - 1
}

// Clamp converts v into a weight inside b.
func (b Bounds) Clamp(v int32) Weight {
	if v > int32(b.Max) {
		return b.Max
	}
	if v < int32(b.Min) {
		return b.Min
	}
	return Weight(v)
}

// Contains reports whether w lies inside b.
func (b Bounds) Contains(w Weight) bool {
	return w >= b.Min && w <= b.Max
}
