package mapping

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNoReadOnlyCtor  = errors.New("read-only collection type has no registered constructor")
	ErrBadReadOnlyCtor = errors.New("read-only constructor must be func(mutable) readonly")
)

// CtorRegistry maps read-only collection types to their single-argument
// constructor functions. A destination demanding immutability without a
// registered constructor is a configuration error; the compiler never
// guesses one.
type CtorRegistry struct {
	ctors map[reflect.Type]reflect.Value
}

// NewCtorRegistry creates an empty registry.
func NewCtorRegistry() *CtorRegistry {
	return &CtorRegistry{ctors: make(map[reflect.Type]reflect.Value)}
}

// Register records a constructor, keyed by its result type. The function
// must take exactly one argument (the mutable form) and return exactly one
// value (the read-only form).
func (r *CtorRegistry) Register(ctor any) error {
	v := reflect.ValueOf(ctor)
	if v.Kind() != reflect.Func {
		return ErrBadReadOnlyCtor
	}

	t := v.Type()
	if t.NumIn() != 1 || t.NumOut() != 1 {
		return fmt.Errorf("%w, got %s", ErrBadReadOnlyCtor, t)
	}

	r.ctors[t.Out(0)] = v

	return nil
}

// Has reports whether a constructor is registered for the type.
func (r *CtorRegistry) Has(readonly reflect.Type) bool {
	_, ok := r.ctors[readonly]
	return ok
}

// Lookup returns the constructor for a read-only destination type.
func (r *CtorRegistry) Lookup(readonly reflect.Type) (reflect.Value, error) {
	ctor, ok := r.ctors[readonly]
	if !ok {
		return reflect.Value{}, fmt.Errorf("%w: %s", ErrNoReadOnlyCtor, readonly)
	}

	return ctor, nil
}

// MutableFor returns the mutable collection type the registered constructor
// for readonly consumes.
func (r *CtorRegistry) MutableFor(readonly reflect.Type) (reflect.Type, error) {
	ctor, err := r.Lookup(readonly)
	if err != nil {
		return nil, err
	}

	return ctor.Type().In(0), nil
}
