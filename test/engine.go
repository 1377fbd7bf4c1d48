// Package test provides a reference executor for synthesized circuits.
//
// The engine evolves a sparse state vector keyed by full basis bitstrings.
// Synthesis keeps at most one coordinate window in Fourier superposition at
// a time, so the support stays far below the 2^n worst case and toy-curve
// circuits run exactly. Execute is deterministic: it returns the
// expected-count histogram obtained by largest-remainder rounding of the
// exact output distribution, so tests compare histograms without sampling
// noise.
package test

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
	"strings"

	"github.com/consensys/qnark/backend"
	"github.com/consensys/qnark/circuit"
)

const invSqrt2 = 1 / math.Sqrt2

// maxSupport caps the basis-state count; a circuit that trips it is holding
// far more than one window in superposition.
const maxSupport = 1 << 24

// Engine is a sparse state-vector executor. It implements backend.Executor.
type Engine struct {
	prune float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPruneThreshold overrides the squared-amplitude threshold below which a
// basis state is dropped after interference. The default 1e-18 removes only
// cancellation residue.
func WithPruneThreshold(eps float64) Option {
	return func(e *Engine) {
		e.prune = eps
	}
}

// NewEngine returns a reference engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{prune: 1e-18}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State runs the circuit and returns its final state vector. Measurement
// operations terminate the run; any gate after a measurement is an error.
func (e *Engine) State(c *circuit.Circuit) (*State, error) {
	if c.NbQubits() == 0 {
		return nil, errors.New("circuit has no registers")
	}
	amp := map[string]complex128{strings.Repeat("0", c.NbQubits()): 1}
	measured := false
	for i, op := range c.Ops() {
		if op.Kind == circuit.GateMeasure {
			measured = true
			continue
		}
		if measured {
			return nil, fmt.Errorf("operation %d (%s) emitted after a measurement", i, op.Kind)
		}
		var err error
		switch op.Kind {
		case circuit.GateH:
			amp, err = applyH(amp, op.Targets[0], e.prune)
		case circuit.GateX:
			amp = applyX(amp, op)
		case circuit.GateSwap:
			amp = applySwap(amp, op)
		case circuit.GatePhase:
			applyPhase(amp, op)
		default:
			err = fmt.Errorf("operation %d: unknown gate kind %d", i, op.Kind)
		}
		if err != nil {
			return nil, err
		}
	}
	return &State{c: c, amp: amp}, nil
}

// Execute implements backend.Executor. The histogram holds the deterministic
// expected counts of the exact output distribution over the measured
// registers: per-key shares are floored, then the leftover shots go to the
// largest fractional parts, ties broken by key order.
func (e *Engine) Execute(c *circuit.Circuit, shots uint64) (backend.Histogram, error) {
	if shots == 0 || shots > 1<<62 {
		return nil, fmt.Errorf("shots %d out of range", shots)
	}
	regs := c.MeasuredRegisters()
	if len(regs) == 0 {
		return nil, errors.New("circuit measures no register")
	}
	st, err := e.State(c)
	if err != nil {
		return nil, err
	}

	probs := make(map[string]float64)
	var total float64
	for k, a := range st.amp {
		p := real(a)*real(a) + imag(a)*imag(a)
		probs[histKey(k, regs)] += p
		total += p
	}
	keys := make([]string, 0, len(probs))
	for k := range probs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := make(backend.Histogram, len(keys))
	type leftover struct {
		key  string
		frac float64
	}
	rem := int64(shots)
	fracs := make([]leftover, 0, len(keys))
	for _, k := range keys {
		exact := float64(shots) * probs[k] / total
		fl := math.Floor(exact)
		if fl > 0 {
			h[k] = uint64(fl)
		}
		rem -= int64(fl)
		fracs = append(fracs, leftover{key: k, frac: exact - fl})
	}
	sort.SliceStable(fracs, func(i, j int) bool { return fracs[i].frac > fracs[j].frac })
	for i := 0; rem > 0; i++ {
		h[fracs[i%len(fracs)].key]++
		rem--
	}
	return h, nil
}

func applyH(amp map[string]complex128, q int, prune float64) (map[string]complex128, error) {
	next := make(map[string]complex128, 2*len(amp))
	for k, a := range amp {
		b := []byte(k)
		b[q] = '0'
		k0 := string(b)
		b[q] = '1'
		k1 := string(b)
		if k[q] == '0' {
			next[k0] += a * invSqrt2
			next[k1] += a * invSqrt2
		} else {
			next[k0] += a * invSqrt2
			next[k1] -= a * invSqrt2
		}
	}
	for k, a := range next {
		if real(a)*real(a)+imag(a)*imag(a) < prune {
			delete(next, k)
		}
	}
	if len(next) > maxSupport {
		return nil, fmt.Errorf("state support %d exceeds engine limit", len(next))
	}
	return next, nil
}

func applyX(amp map[string]complex128, op circuit.Operation) map[string]complex128 {
	q := op.Targets[0]
	next := make(map[string]complex128, len(amp))
	for k, a := range amp {
		if !controlsSet(k, op.Controls) {
			next[k] += a
			continue
		}
		b := []byte(k)
		b[q] ^= 1
		next[string(b)] += a
	}
	return next
}

func applySwap(amp map[string]complex128, op circuit.Operation) map[string]complex128 {
	q1, q2 := op.Targets[0], op.Targets[1]
	next := make(map[string]complex128, len(amp))
	for k, a := range amp {
		if !controlsSet(k, op.Controls) || k[q1] == k[q2] {
			next[k] += a
			continue
		}
		b := []byte(k)
		b[q1], b[q2] = b[q2], b[q1]
		next[string(b)] += a
	}
	return next
}

func applyPhase(amp map[string]complex128, op circuit.Operation) {
	q := op.Targets[0]
	phase := cmplx.Rect(1, op.Param.Radians())
	for k, a := range amp {
		if k[q] == '1' && controlsSet(k, op.Controls) {
			amp[k] = a * phase
		}
	}
}

func controlsSet(k string, ctrls []int) bool {
	for _, c := range ctrls {
		if k[c] == '0' {
			return false
		}
	}
	return true
}

func histKey(basis string, regs []*circuit.Register) string {
	var sb strings.Builder
	for _, r := range regs {
		for j := r.Width() - 1; j >= 0; j-- {
			sb.WriteByte(basis[r.Qubit(j)])
		}
	}
	return sb.String()
}

// State is the final sparse state vector of a run.
type State struct {
	c   *circuit.Circuit
	amp map[string]complex128
}

// Size returns the number of basis states carrying amplitude.
func (s *State) Size() int { return len(s.amp) }

// Norm returns the squared norm of the state, 1 up to pruning error.
func (s *State) Norm() float64 {
	var n float64
	for _, a := range s.amp {
		n += real(a)*real(a) + imag(a)*imag(a)
	}
	return n
}

// Amplitude returns the amplitude of a basis state given as a full-width
// bitstring with qubit i at position i.
func (s *State) Amplitude(basis string) complex128 { return s.amp[basis] }

// Amplitudes returns a copy of the support.
func (s *State) Amplitudes() map[string]complex128 {
	out := make(map[string]complex128, len(s.amp))
	for k, a := range s.amp {
		out[k] = a
	}
	return out
}

// IsClassical reports whether the state is a single basis state of unit
// norm.
func (s *State) IsClassical() bool {
	return len(s.amp) == 1 && math.Abs(s.Norm()-1) < 1e-6
}

// Value decodes the named register from a classical state.
func (s *State) Value(name string) (uint64, error) {
	r := s.c.Register(name)
	if r == nil {
		return 0, fmt.Errorf("no register %q", name)
	}
	if !s.IsClassical() {
		return 0, fmt.Errorf("state holds %d basis states, not a classical value", len(s.amp))
	}
	for k := range s.amp {
		return decodeRegister(k, r), nil
	}
	return 0, errors.New("empty state")
}

func decodeRegister(basis string, r *circuit.Register) uint64 {
	var v uint64
	for j := r.Width() - 1; j >= 0; j-- {
		v <<= 1
		if basis[r.Qubit(j)] == '1' {
			v |= 1
		}
	}
	return v
}
