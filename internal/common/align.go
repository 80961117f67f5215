package common

func AlignUp(x, a uint64) uint64 {
	if a == 0 {
		return x
	}
	r := x % a
	if r == 0 {
		return x
	}
	return x + (a - r)
}

// IsAligned reports whether x sits on an a-sector boundary. a == 0 disables the check.
func IsAligned(x, a uint64) bool {
	return AlignUp(x, a) == x
}
