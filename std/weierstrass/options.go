package weierstrass

// Option configures a composed addition.
type Option func(*config)

type config struct {
	ctrls []int
}

// WithControls conditions the whole addition on the given qubits: every
// arithmetic rotation and the closing coordinate swap.
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
