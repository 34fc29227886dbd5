package lsh

func lowMask(n int) uint64 {
	if n <= 0 {
		return 0
	}
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// FlipNeighbors1 returns idx (restricted to its lowest n bits) followed by
// every value that differs from it in exactly one of those bits, lowest bit
// first.
func FlipNeighbors1(idx, n int) []int {
	mask := lowMask(n)
	out := make([]int, 0, n+1)
	out = append(out, int(uint64(idx)&mask))
	for i := 0; i < n; i++ {
		out = append(out, int((uint64(idx)^(1<<uint(i)))&mask))
	}
	return out
}

// FlipNeighbors2 returns idx (restricted to its lowest n bits) followed by
// the values reached by flipping bits i and j for every 0 ≤ i ≤ j < n.
// When i == j a single bit is flipped, so the result covers Hamming
// distance one and two.
func FlipNeighbors2(idx, n int) []int {
	mask := lowMask(n)
	out := make([]int, 0, 1+n*(n+1)/2)
	out = append(out, int(uint64(idx)&mask))
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			flip := uint64(1)<<uint(i) | uint64(1)<<uint(j)
			out = append(out, int((uint64(idx)^flip)&mask))
		}
	}
	return out
}
