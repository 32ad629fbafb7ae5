package utils

// Min64 returns the minimum of two int64 values.
func Min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// Max64 returns the maximum of two int64 values.
func Max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
