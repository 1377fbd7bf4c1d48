package ecc

import (
	"errors"
	"fmt"
	"math/big"
)

// CurveParams is an (a,b) coefficient pair produced by FindCurveParams.
type CurveParams struct {
	A, B int64
}

// maxSearchModulus bounds the (a,b) enumeration to p² candidate pairs that
// finish quickly. The search targets toy fields; larger moduli need side
// information, not enumeration.
const maxSearchModulus = 1 << 16

// FindCurveParams enumerates the coefficient pairs (a,b) in [0,p)² for which
// every sample point satisfies y² = x³ + ax + b mod p and the resulting curve
// is non-singular. Candidates are returned in (a,b) lexicographic order.
//
// This recovers curve coefficients from observed points when only the field
// is known, e.g. to reconstruct the curve a key pair lives on.
func FindCurveParams(p *big.Int, pts ...Point) ([]CurveParams, error) {
	if p == nil || !p.IsInt64() || p.Int64() > maxSearchModulus {
		return nil, fmt.Errorf("search modulus must fit in [5,%d]", maxSearchModulus)
	}
	if p.Cmp(big.NewInt(3)) <= 0 || p.Bit(0) == 0 || !p.ProbablyPrime(20) {
		return nil, fmt.Errorf("modulus %s is not an odd prime above 3", p)
	}
	if len(pts) == 0 {
		return nil, errors.New("need at least one sample point")
	}
	pp := p.Int64()
	type sample struct{ x, rhs, x3 int64 }
	samples := make([]sample, 0, len(pts))
	for _, pt := range pts {
		if pt.IsInfinity() {
			continue
		}
		x := new(big.Int).Mod(pt.X, p).Int64()
		y := new(big.Int).Mod(pt.Y, p).Int64()
		samples = append(samples, sample{
			x:   x,
			rhs: y * y % pp,
			x3:  x * x % pp * x % pp,
		})
	}
	if len(samples) == 0 {
		return nil, errors.New("need at least one affine sample point")
	}

	var out []CurveParams
	for a := int64(0); a < pp; a++ {
		for b := int64(0); b < pp; b++ {
			ok := true
			for _, s := range samples {
				if (s.x3+a*s.x+b)%pp != s.rhs {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			// Discriminant Δ = -16(4a³+27b²) must be nonzero.
			if (4*a%pp*a%pp*a+27*b%pp*b)%pp == 0 {
				continue
			}
			out = append(out, CurveParams{A: a, B: b})
		}
	}
	return out, nil
}
