package canon

// RightJustify pads a big-endian magnitude up to a fixed target width,
// keeping the existing bytes at the low (least-significant) end and
// zero-filling the leading bytes. It is the mandatory follow-up to every
// bignum export that might produce fewer than the declared field width.
// A no-op when src is already target bytes long.
func RightJustify(src []byte, target int) []byte {
	if len(src) == target {
		return src
	}
	if len(src) > target {
		// The magnitude no longer fits the declared field width. Callers
		// in this module never let that happen; keep the low-order
		// target bytes rather than panic.
		return src[len(src)-target:]
	}
	out := make([]byte, target)
	copy(out[target-len(src):], src)
	return out
}
