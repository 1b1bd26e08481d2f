package item

import (
	"math"
	"math/big"
	"strconv"
)

var (
	hundred = big.NewInt(100)
	one     = big.NewInt(1)
)

// RoundPrice rounds v half away from zero to two decimals. Rounding works on
// the shortest decimal representation of v, so 1.005 becomes 1.01 rather than
// following the binary expansion down to 1.00.
func RoundPrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}

	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'g', -1, 64))
	if !ok {
		return math.Round(v*100) / 100
	}
	r.Mul(r, new(big.Rat).SetInt(hundred))

	num, den := r.Num(), r.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	rem.Abs(rem).Lsh(rem, 1)
	if rem.Cmp(den) >= 0 {
		if num.Sign() < 0 {
			q.Sub(q, one)
		} else {
			q.Add(q, one)
		}
	}

	out, _ := new(big.Rat).SetFrac(q, hundred).Float64()
	return out
}
