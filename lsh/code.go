package lsh

import (
	"math/big"
	"math/bits"
	"slices"
)

// Code is a non-negative integer of arbitrary width, stored as little-endian
// 64-bit words. Bit i of a sign hash has weight 2^i.
//
// The zero value is the code 0.
type Code struct {
	words []uint64
}

func newCode(words []uint64) Code {
	n := len(words)
	for n > 0 && words[n-1] == 0 {
		n--
	}
	if n == 0 {
		return Code{}
	}
	return Code{words: words[:n]}
}

// CodeFromUint64 returns the code with value v.
func CodeFromUint64(v uint64) Code {
	return newCode([]uint64{v})
}

// CodeFromBig returns the code with value |v|.
func CodeFromBig(v *big.Int) Code {
	rest := new(big.Int).Abs(v)
	mask := new(big.Int).SetUint64(^uint64(0))
	var words []uint64
	for rest.Sign() > 0 {
		words = append(words, new(big.Int).And(rest, mask).Uint64())
		rest.Rsh(rest, 64)
	}
	return newCode(words)
}

// Bit reports whether bit i is set.
func (c Code) Bit(i int) bool {
	if i < 0 {
		return false
	}
	w := i / 64
	if w >= len(c.words) {
		return false
	}
	return c.words[w]>>(uint(i)%64)&1 == 1
}

// BitLen returns the number of bits needed to represent c; 0 for the zero code.
func (c Code) BitLen() int {
	if len(c.words) == 0 {
		return 0
	}
	top := len(c.words) - 1
	return top*64 + bits.Len64(c.words[top])
}

// Mod returns c mod n. n must be positive.
func (c Code) Mod(n int) int {
	if n <= 0 {
		panic("lsh: Code.Mod with non-positive modulus")
	}
	m := uint64(n)
	var r uint64
	for i := len(c.words) - 1; i >= 0; i-- {
		r = bits.Rem64(r, c.words[i], m)
	}
	return int(r)
}

// Uint64 returns c as a uint64 and whether it fits.
func (c Code) Uint64() (uint64, bool) {
	switch len(c.words) {
	case 0:
		return 0, true
	case 1:
		return c.words[0], true
	default:
		return 0, false
	}
}

// Equal reports whether c and o have the same value.
func (c Code) Equal(o Code) bool {
	return slices.Equal(c.words, o.words)
}

// Big returns c as a big.Int.
func (c Code) Big() *big.Int {
	z := new(big.Int)
	for i := len(c.words) - 1; i >= 0; i-- {
		z.Lsh(z, 64)
		z.Or(z, new(big.Int).SetUint64(c.words[i]))
	}
	return z
}

// String returns the decimal representation of c.
func (c Code) String() string {
	if v, ok := c.Uint64(); ok {
		return new(big.Int).SetUint64(v).String()
	}
	return c.Big().String()
}
