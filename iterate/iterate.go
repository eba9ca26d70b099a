// Package iterate defines the enumerator contract the loop synthesizer
// compiles against, plus adapters for the reflect kinds Go can iterate.
package iterate

import (
	"errors"
	"io"
	"reflect"
)

var ErrNotIterable = errors.New("value is not iterable")

// Iterator walks a sequence of reflect values. Implementations that hold
// releasable state (cursors, channels) additionally implement io.Closer;
// synthesized loops close them on every exit path.
type Iterator interface {
	// Next advances the iterator and reports whether an element is available.
	Next() bool
	// Value returns the current element. Only valid after Next returned true.
	Value() reflect.Value
}

// Enumerable is implemented by custom containers that hand out their own
// iterator. It takes precedence over the built-in reflect adapters.
type Enumerable interface {
	Elements() Iterator
}

// New adapts v to an Iterator. Slices, arrays, maps and channels are handled
// via reflection; anything implementing Enumerable supplies its own iterator.
func New(v reflect.Value) (Iterator, error) {
	if !v.IsValid() {
		return empty{}, nil
	}

	if e, ok := v.Interface().(Enumerable); ok {
		return e.Elements(), nil
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return &indexIterator{src: v, pos: -1}, nil

	case reflect.Map:
		return &mapIterator{iter: v.MapRange()}, nil

	case reflect.Chan:
		return &chanIterator{src: v}, nil

	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return empty{}, nil
		}

		return New(v.Elem())
	}

	return nil, ErrNotIterable
}

// MustNew is the builtin the loop synthesizer binds into IR trees; the
// synthesizer only emits it for sources it already verified iterable.
func MustNew(v reflect.Value) Iterator {
	it, err := New(v)
	if err != nil {
		panic("iterate: " + err.Error())
	}

	return it
}

type empty struct{}

func (empty) Next() bool           { return false }
func (empty) Value() reflect.Value { return reflect.Value{} }

type indexIterator struct {
	src reflect.Value
	pos int
}

func (it *indexIterator) Next() bool {
	it.pos++
	return it.pos < it.src.Len()
}

func (it *indexIterator) Value() reflect.Value { return it.src.Index(it.pos) }

type mapIterator struct {
	iter *reflect.MapIter
}

func (it *mapIterator) Next() bool           { return it.iter.Next() }
func (it *mapIterator) Value() reflect.Value { return it.iter.Value() }

type chanIterator struct {
	src reflect.Value
	cur reflect.Value
}

func (it *chanIterator) Next() bool {
	v, ok := it.src.Recv()
	it.cur = v

	return ok
}

func (it *chanIterator) Value() reflect.Value { return it.cur }

// Closing wraps an iterator with an extra release hook so callers can attach
// cleanup to iteration without implementing a full custom iterator.
func Closing(inner Iterator, release func() error) Iterator {
	return &closing{inner: inner, release: release}
}

type closing struct {
	inner   Iterator
	release func() error
}

func (c *closing) Next() bool           { return c.inner.Next() }
func (c *closing) Value() reflect.Value { return c.inner.Value() }

func (c *closing) Close() error {
	if inner, ok := c.inner.(io.Closer); ok {
		if err := inner.Close(); err != nil {
			return err
		}
	}

	if c.release == nil {
		return nil
	}

	return c.release()
}
