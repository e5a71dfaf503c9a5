package engine

// Config holds engine-wide tunables. There is no config-file/env loader
// here: the caller sets plain struct fields, the same way the rest of
// this module's constructors take explicit values rather than reaching
// for a config library.
type Config struct {
	// MaxConcurrentSuspensions bounds how many sibling fields a Group may
	// run concurrently before later ones wait (§5 fan-out). Zero means
	// unbounded.
	MaxConcurrentSuspensions int

	// DefaultNullsOrder is used for an OrderBy selection that does not
	// specify one explicitly (§5).
	DefaultNullsOrder NullsOrder

	// AllowIntrospection toggles whether Introspect query nodes are
	// honored; when false the interpreter reports SchemaValidation
	// instead of running the Introspect node's child.
	AllowIntrospection bool

	Logger Logger
}

// ConfigOption mutates a Config being built by NewConfig, the usual
// functional-options shape for optional construction-time parameters.
type ConfigOption func(*Config)

// WithMaxConcurrentSuspensions bounds sibling fan-out concurrency.
func WithMaxConcurrentSuspensions(n int) ConfigOption {
	return func(c *Config) { c.MaxConcurrentSuspensions = n }
}

// WithDefaultNullsOrder sets the nulls-ordering used when OrderBy omits one.
func WithDefaultNullsOrder(order NullsOrder) ConfigOption {
	return func(c *Config) { c.DefaultNullsOrder = order }
}

// WithIntrospection toggles Introspect support.
func WithIntrospection(allow bool) ConfigOption {
	return func(c *Config) { c.AllowIntrospection = allow }
}

// WithLogger overrides the default no-op Logger.
func WithLogger(l Logger) ConfigOption {
	return func(c *Config) { c.Logger = l }
}

// NewConfig builds a Config with sane defaults (unbounded fan-out, nulls
// last, introspection on, logging discarded) overridden by opts.
func NewConfig(opts ...ConfigOption) Config {
	c := Config{
		MaxConcurrentSuspensions: 0,
		DefaultNullsOrder:        NullsLast,
		AllowIntrospection:       true,
		Logger:                   noopLogger{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
