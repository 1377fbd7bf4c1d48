//go:build !debug

package debug

// Debug reports whether the library was built with the debug tag. Debug builds
// enable internal assertions on the circuit builder's uncompute bookkeeping and
// keep the logger active under go test.
const Debug = false
