package vmem

import "golang.org/x/exp/constraints"

func Align[I constraints.Integer](a, b I) I {
	return (a + b - 1) &^ (b - 1)
}

func AlignDown[I constraints.Integer](a, b I) I {
	return a &^ (b - 1)
}

// PageOf returns the base of the page holding a.
func PageOf(off uint32) uint32 {
	return AlignDown(off, PAGE_SIZE)
}
