// Package safeconv provides integer conversions that panic instead of
// silently wrapping.
package safeconv

// MustInt64ToUint64 converts v to uint64, panicking if it is negative.
// Use only for sizes and counts that cannot be negative.
func MustInt64ToUint64(v int64) uint64 {
	if v < 0 {
		panic("safeconv: negative int64 to uint64 conversion")
	}

	return uint64(v)
}

// MustUint64ToInt64 converts v to int64, panicking above math.MaxInt64.
func MustUint64ToInt64(v uint64) int64 {
	if v > 1<<63-1 {
		panic("safeconv: uint64 to int64 overflow")
	}

	return int64(v)
}
