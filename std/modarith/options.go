package modarith

// Option configures a synthesis primitive.
type Option func(*config)

type config struct {
	ctrls []int
}

// WithControls conditions every phase rotation the primitive emits on the
// given qubits. The Fourier sandwich around the rotations is never
// conditioned, so a controlled primitive with its controls off reduces to the
// identity while keeping the same gate structure.
func WithControls(qubits ...int) Option {
	return func(c *config) {
		c.ctrls = append(c.ctrls, qubits...)
	}
}

func newConfig(opts ...Option) config {
	var c config
	for _, o := range opts {
		o(&c)
	}
	return c
}
