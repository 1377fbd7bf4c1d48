package circuit

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/consensys/qnark/internal/debug"
	"golang.org/x/crypto/blake2b"
)

// Role tags a register with its semantic function in the synthesized circuit.
type Role uint8

const (
	// RoleSelector marks a phase-estimation selector register.
	RoleSelector Role = iota
	// RoleCoordinate marks a projective point coordinate register.
	RoleCoordinate
	// RoleScratch marks an ancilla block issued by an AncillaPool.
	RoleScratch
)

func (r Role) String() string {
	switch r {
	case RoleSelector:
		return "selector"
	case RoleCoordinate:
		return "coordinate"
	case RoleScratch:
		return "scratch"
	default:
		return "unknown"
	}
}

type blockState uint8

const (
	// stateStatic marks registers created directly on a Circuit,
	// outside any pool.
	stateStatic blockState = iota
	stateFree
	stateInUse
	stateRetired
)

// Register is a named, ordered, fixed-width group of qubits. Its geometry
// (name, role, offset, width) is immutable once allocated; quantum contents
// change only through operations.
//
// A register additionally carries synthesis-time bookkeeping: a static bound
// on the integer value it can hold, and a LIFO journal of content tags used to
// validate uncomputation. Neither is part of the executor wire contract.
type Register struct {
	name   string
	label  string
	role   Role
	offset int
	width  int

	bound   *big.Int
	journal []writeRecord
	content Tag

	state blockState
	owner *AncillaPool
}

type writeRecord struct {
	tag       Tag
	prevBound *big.Int
	prevID    Tag
}

// Name returns the register's unique name within its circuit.
func (r *Register) Name() string { return r.name }

// Label returns the secondary semantic tag assigned by an AncillaPool
// (e.g. "H2"), or the empty string for registers allocated directly.
func (r *Register) Label() string { return r.label }

// Role returns the register's semantic role.
func (r *Register) Role() Role { return r.role }

// Width returns the number of qubits in the register.
func (r *Register) Width() int { return r.width }

// Offset returns the global index of the register's least significant qubit.
func (r *Register) Offset() int { return r.offset }

// Qubit returns the global index of qubit i, with i=0 the least significant.
func (r *Register) Qubit(i int) int {
	if i < 0 || i >= r.width {
		panic(fmt.Sprintf("qubit %d out of range for register %s of width %d", i, r.name, r.width))
	}
	return r.offset + i
}

// Qubits returns the global indices of all qubits, least significant first.
func (r *Register) Qubits() []int {
	q := make([]int, r.width)
	for i := range q {
		q[i] = r.offset + i
	}
	return q
}

// Bound returns a copy of the static upper bound on the integer value the
// register can currently hold.
func (r *Register) Bound() *big.Int {
	return new(big.Int).Set(r.bound)
}

// Pending returns the number of recorded writes not yet matched by an inverse.
func (r *Register) Pending() int { return len(r.journal) }

// IsClean reports whether every recorded write has been uncomputed, i.e. the
// register is back to the all-zero state in the noiseless model.
func (r *Register) IsClean() bool { return len(r.journal) == 0 }

// Tag identifies the content written to a register by one synthesis
// primitive. Tags fingerprint the operation and the contents of its source
// registers, so an uncompute step matches iff it inverts the same value, even
// when that value was recomputed into a different block.
type Tag [16]byte

// OpTag builds the content tag for a primitive application: label names the
// primitive, params carries its classical constants, and srcs are the source
// registers whose current contents feed the written value.
func OpTag(label string, params []uint64, srcs ...*Register) Tag {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write([]byte(label))
	var buf [8]byte
	for _, p := range params {
		binary.LittleEndian.PutUint64(buf[:], p)
		h.Write(buf[:])
	}
	for _, s := range srcs {
		h.Write(s.content[:])
	}
	var t Tag
	copy(t[:], h.Sum(nil))
	return t
}

func mixTag(prev, t Tag) Tag {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(prev[:])
	h.Write(t[:])
	var out Tag
	copy(out[:], h.Sum(nil))
	return out
}

// NoteWrite records a forward write with the given content tag and the new
// static bound on the register's value.
func (r *Register) NoteWrite(t Tag, bound *big.Int) {
	r.journal = append(r.journal, writeRecord{
		tag:       t,
		prevBound: r.bound,
		prevID:    r.content,
	})
	r.bound = new(big.Int).Set(bound)
	r.content = mixTag(r.content, t)
}

// NoteInverse records the uncomputation of the most recent write. The tag must
// match the journal head: uncomputation is valid only in exactly reversed
// order against equal content.
func (r *Register) NoteInverse(t Tag) error {
	n := len(r.journal)
	if n == 0 {
		debug.Assert(false, "uncompute on clean register "+r.name)
		return fmt.Errorf("register %s: uncompute recorded on clean register", r.name)
	}
	head := r.journal[n-1]
	if head.tag != t {
		debug.Assert(false, "uncompute mismatch on register "+r.name)
		return fmt.Errorf("register %s: uncompute does not match last write (out-of-order or aliased source)", r.name)
	}
	r.bound = head.prevBound
	r.content = head.prevID
	r.journal = r.journal[:n-1]
	return nil
}

// exchangeContents swaps the full bookkeeping state of two registers. Used for
// unconditional register swaps, where contents are exchanged exactly.
func exchangeContents(a, b *Register) {
	a.bound, b.bound = b.bound, a.bound
	a.journal, b.journal = b.journal, a.journal
	a.content, b.content = b.content, a.content
}

// blendContents accounts for a controlled register swap: each side may hold
// either prior content depending on the control, so both receive a fresh tag
// derived from the pair and the bound becomes the max of the two. The
// resulting contents are not uncomputable; callers retire the scratch side.
func blendContents(a, b *Register, ctrls []int) {
	params := make([]uint64, 0, len(ctrls)+1)
	for _, c := range ctrls {
		params = append(params, uint64(c))
	}
	ta := OpTag("cswap/a", params, a, b)
	tb := OpTag("cswap/b", params, a, b)
	bound := new(big.Int).Set(a.bound)
	if b.bound.Cmp(bound) > 0 {
		bound.Set(b.bound)
	}
	a.NoteWrite(ta, bound)
	b.NoteWrite(tb, bound)
}
