// Package options implements generic functional options.
//
// The fold packages thread an explicit configuration struct through every
// operation; these helpers let each package expose typed With* constructors
// over that struct without repeating the plumbing.
package options

// Option configures a value of type T. Construct one with New or NoError.
type Option[T any] interface {
	apply(T) error
}

// Func adapts a configuration function into an Option.
type Func[T any] struct {
	fn func(T) error
}

func (f *Func[T]) apply(target T) error {
	return f.fn(target)
}

// New wraps a fallible configuration function. Use it for options that
// validate their argument.
func New[T any](fn func(T) error) *Func[T] {
	return &Func[T]{fn: fn}
}

// NoError wraps a configuration function that cannot fail.
func NoError[T any](fn func(T)) *Func[T] {
	return &Func[T]{
		fn: func(target T) error {
			fn(target)
			return nil
		},
	}
}

// Apply applies opts to target in order, stopping at the first error.
func Apply[T any](target T, opts ...Option[T]) error {
	for _, opt := range opts {
		if err := opt.apply(target); err != nil {
			return err
		}
	}

	return nil
}
