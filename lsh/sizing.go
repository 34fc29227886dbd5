package lsh

import "math"

// SizesFromProbabilities picks a bit count and a table count for n vectors.
//
// p1 is the minimum probability that near vectors share a bucket and p2 the
// maximum probability that far vectors do:
//
//	bits   = round(log2 n / log2(1/p2))
//	tables = round(n^ρ), ρ = log p1 / log p2
//
// Both results are at least 1.
func SizesFromProbabilities(n int, p1, p2 float64) (bits, tables int, err error) {
	if n < 1 {
		return 0, 0, ErrInvalidCount
	}
	if !(p2 > 0 && p2 < p1 && p1 < 1) {
		return 0, 0, ErrInvalidProbability
	}
	fn := float64(n)
	bits = int(math.Round(math.Log2(fn) / math.Log2(1/p2)))
	rho := math.Log2(p1) / math.Log2(p2)
	tables = int(math.Round(math.Pow(fn, rho)))
	return max(bits, 1), max(tables, 1), nil
}
