package config

// Opt is an optional value that keeps "not given" apart from "given as the
// zero value".
type Opt[T any] struct {
	v   T
	set bool
}

// Some returns a set Opt.
func Some[T any](v T) Opt[T] { return Opt[T]{v: v, set: true} }

// None returns an unset Opt.
func None[T any]() Opt[T] { return Opt[T]{} }

// IsSet reports whether a value was given.
func (o Opt[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was given.
func (o Opt[T]) Get() (T, bool) { return o.v, o.set }

// Value returns the value, or the zero value when unset.
func (o Opt[T]) Value() T { return o.v }

// On reports whether a boolean option was given and true.
func On(o Opt[bool]) bool { return o.set && o.v }

// Given reports whether a string option was given and non-empty.
func Given(o Opt[string]) bool { return o.set && o.v != "" }
