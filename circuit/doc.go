// Package circuit defines the reversible-circuit intermediate representation
// shared by all qnark synthesis layers and by execution backends.
//
// A Circuit is an append-only list of Operations over a fixed set of named
// Registers; operation order is semantically significant. Synthesis layers
// never mutate a Circuit directly: they record operations into Sequences,
// compose those by concatenation, and the top level appends the result once. A
// Sequence knows how to emit its own adjoint mechanically (reversed order,
// negated phase parameters), which is the only way inverse gate lists are
// produced in this library.
//
// Scratch registers come from an AncillaPool, an arena that tracks a
// free / in-use / retired state machine per block. Every write recorded
// against a register carries a content tag (a blake2b fingerprint of the
// operation and its source contents); uncomputation pops tags in LIFO order
// and a block may only be released once its journal is empty again. Blocks
// that intentionally carry displaced values to the end of the circuit are
// retired instead and never reused.
package circuit
