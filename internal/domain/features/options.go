package features

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithCategoricalFields replaces the set of categorical fields whose values
// are one-hot encoded in the schema.
func WithCategoricalFields(fields ...string) Option {
	return func(b *Builder) {
		b.categorical = sortLongestFirst(fields)
	}
}

// WithMissingPolicy sets how absent categorical fields are handled.
func WithMissingPolicy(p MissingPolicy) Option {
	return func(b *Builder) {
		if p == MissingAsZero || p == MissingStrict {
			b.policy = p
		}
	}
}
