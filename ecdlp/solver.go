package ecdlp

import (
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"github.com/consensys/qnark/backend"
	"github.com/consensys/qnark/ecc"
	"github.com/consensys/qnark/logger"
)

// Sample is one measured selector pair with its observed count.
type Sample struct {
	A, B  uint64
	Count uint64
}

// ParseHistogram splits executor keys into selector pairs. Keys follow the
// measurement order of Synthesize: the a register occupies the leftmost nbBits
// characters, most significant bit first, then b. Samples come back sorted by
// (A, B) so downstream processing does not depend on map iteration order.
func ParseHistogram(h backend.Histogram, nbBits int) ([]Sample, error) {
	if nbBits < 1 {
		return nil, fmt.Errorf("selector width %d, need at least 1", nbBits)
	}
	samples := make([]Sample, 0, len(h))
	for key, count := range h {
		if len(key) != 2*nbBits {
			return nil, fmt.Errorf("histogram key %q: want %d bits", key, 2*nbBits)
		}
		a, err := strconv.ParseUint(key[:nbBits], 2, 64)
		if err != nil {
			return nil, fmt.Errorf("histogram key %q: %w", key, err)
		}
		b, err := strconv.ParseUint(key[nbBits:], 2, 64)
		if err != nil {
			return nil, fmt.Errorf("histogram key %q: %w", key, err)
		}
		samples = append(samples, Sample{A: a, B: b, Count: count})
	}
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].A != samples[j].A {
			return samples[i].A < samples[j].A
		}
		return samples[i].B < samples[j].B
	})
	return samples, nil
}

// Result is the outcome of one solve pass.
type Result struct {
	// Found reports whether some candidate verified d·P == Q.
	Found bool
	// Scalar is the verified discrete logarithm, nil when not found.
	Scalar *big.Int
	// Votes is the count mass behind the verified candidate.
	Votes uint64
	// Tried is the number of candidates checked by scalar multiplication.
	Tried int
	// Skipped is the count mass discarded for a non-invertible û.
	Skipped uint64
}

// Solve recovers d with Q = d·P on cv from measured selector pairs. Each
// sample rescales to the dual lattice of the group order,
//
//	û = round(a·r/2^m) mod r,  v̂ = round(b·r/2^m) mod r,
//
// and pairs with invertible û vote for the candidate d = v̂·û⁻¹ mod r.
// Candidates are verified by classical scalar multiplication in descending
// vote order, ties toward the smaller value so repeated runs agree. Samples
// whose û has no inverse mod r carry no information and are skipped.
//
// An exhausted candidate list is a Found=false result, not an error.
func Solve(cv *ecc.Curve, order *big.Int, p, q ecc.Point, nbBits int, samples []Sample) (Result, error) {
	if nbBits < 1 {
		return Result{}, fmt.Errorf("selector width %d, need at least 1", nbBits)
	}
	if order == nil || order.Cmp(big.NewInt(1)) <= 0 {
		return Result{}, fmt.Errorf("group order must exceed 1, got %v", order)
	}
	if p.IsInfinity() {
		return Result{}, fmt.Errorf("base point must be finite")
	}
	log := logger.Logger()
	if !cv.ScalarMul(order, p).IsInfinity() {
		log.Warn().Str("order", order.String()).Msg("order does not annihilate the base point")
	}

	m := uint(nbBits)
	half := new(big.Int).Lsh(big.NewInt(1), m-1)
	rescale := func(x uint64) *big.Int {
		v := new(big.Int).SetUint64(x)
		v.Mul(v, order)
		v.Add(v, half)
		v.Rsh(v, m)
		return v.Mod(v, order)
	}

	type candidate struct {
		d    *big.Int
		mass uint64
	}
	byValue := make(map[string]*candidate)
	var res Result
	for _, smp := range samples {
		inv, ok := ecc.ModInverse(rescale(smp.A), order)
		if !ok {
			res.Skipped += smp.Count
			continue
		}
		d := rescale(smp.B)
		d.Mul(d, inv)
		d.Mod(d, order)
		key := d.String()
		if cd, ok := byValue[key]; ok {
			cd.mass += smp.Count
		} else {
			byValue[key] = &candidate{d: d, mass: smp.Count}
		}
	}

	cands := make([]*candidate, 0, len(byValue))
	for _, cd := range byValue {
		cands = append(cands, cd)
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].mass != cands[j].mass {
			return cands[i].mass > cands[j].mass
		}
		return cands[i].d.Cmp(cands[j].d) < 0
	})

	for _, cd := range cands {
		res.Tried++
		ok := cv.ScalarMul(cd.d, p).Equal(q)
		log.Debug().
			Str("candidate", cd.d.String()).
			Uint64("votes", cd.mass).
			Bool("verified", ok).
			Msg("checked dlog candidate")
		if ok {
			res.Found = true
			res.Scalar = cd.d
			res.Votes = cd.mass
			return res, nil
		}
	}
	return res, nil
}
