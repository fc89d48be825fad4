package core

import "golang.org/x/exp/constraints"

// wrapNext returns (v+1) mod n. n == 0 yields 0.
func wrapNext[T constraints.Unsigned](v, n T) T {
	if n == 0 {
		return 0
	}
	v++
	if v >= n {
		return v % n
	}
	return v
}

// foldMod maps any stored value into [0, n).
func foldMod[T constraints.Unsigned](v, n T) T {
	if n == 0 {
		return 0
	}
	return v % n
}

// satInc increments v without passing limit.
func satInc[T constraints.Unsigned](v, limit T) T {
	if v >= limit {
		return limit
	}
	return v + 1
}

func absCode[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
