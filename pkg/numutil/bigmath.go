// Package numutil holds the fixed-point integer arithmetic shared by the
// order book, the fill simulator, and the margin helpers. Token amounts are
// base units (18-decimal ERC-20s routinely exceed int64), so everything here
// works on *big.Int and never converts through floats.
package numutil

import "math/big"

// MulDivFloor returns floor(a*b/c). c must be positive.
func MulDivFloor(a, b, c *big.Int) *big.Int {
	num := new(big.Int).Mul(a, b)
	return num.Quo(num, c)
}

// MulDivCeil returns ceil(a*b/c). c must be positive.
func MulDivCeil(a, b, c *big.Int) *big.Int {
	num := new(big.Int).Mul(a, b)
	q, r := new(big.Int).QuoRem(num, c, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// CmpRatio compares aNum/aDen against bNum/bDen by cross-multiplication.
// Returns -1, 0 or +1. Denominators must be positive; dividing the two
// ratios would lose precision, so we never do.
func CmpRatio(aNum, aDen, bNum, bDen *big.Int) int {
	left := new(big.Int).Mul(aNum, bDen)
	right := new(big.Int).Mul(bNum, aDen)
	return left.Cmp(right)
}

// PercentGT reports whether part/whole*100 > pct, computed exactly:
// part*100 > whole*pct. whole must be positive.
func PercentGT(part, whole *big.Int, pct int64) bool {
	left := new(big.Int).Mul(part, big.NewInt(100))
	right := new(big.Int).Mul(whole, big.NewInt(pct))
	return left.Cmp(right) > 0
}
