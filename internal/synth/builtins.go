package synth

import (
	"reflect"

	"remap/internal/ir"
	"remap/internal/mapping"
	"remap/iterate"
)

// The builtin accessors synthesized loops and refills call through. They
// are ordinary functions wrapped as static member descriptors, so the
// emitted trees stay inside the closed node set.

func mustExtension(name string, fn any) *ir.MemberInfo {
	m, err := ir.ExtensionOf(name, fn)
	if err != nil {
		panic(err)
	}

	return m
}

var (
	fnLen  = ir.MustFunc("len", loopLen)
	fnAt   = ir.MustFunc("at", loopAt)
	fnInc  = ir.MustFunc("inc", loopInc)
	fnLess = ir.MustFunc("less", loopLess)

	fnEnumerate = ir.MustFunc("enumerate", newIterator)
	fnNext      = mustExtension("next", iterNext)
	fnCurrent   = mustExtension("current", iterCurrent)

	fnTruncate    = ir.MustFunc("truncate", sliceTruncate)
	fnPush        = ir.MustFunc("push", slicePush)
	fnInstantiate = ir.MustFunc("instantiate", instantiate)
	fnClearAll    = ir.MustFunc("clearAll", collectionClear)
	fnAdd         = ir.MustFunc("add", collectionAdd)
	fnIsReadOnly  = ir.MustFunc("isReadOnly", isReadOnly)

	fnMapElement   = ir.MustFunc("mapElement", mapElement)
	fnOverMaxDepth = ir.MustFunc("overMaxDepth", mapping.OverMaxDepth)
	fnCheckContext = ir.MustFunc("checkContext", mapping.CheckContext)
)

func loopLen(src any) int {
	v := reflect.ValueOf(src)
	if !v.IsValid() {
		return 0
	}

	return v.Len()
}

func loopAt(src any, i int) any { return reflect.ValueOf(src).Index(i).Interface() }

func loopInc(i int) int { return i + 1 }

func loopLess(i, n int) bool { return i < n }

func newIterator(src any) iterate.Iterator {
	return iterate.MustNew(reflect.ValueOf(src))
}

func iterNext(it iterate.Iterator) bool { return it.Next() }

func iterCurrent(it iterate.Iterator) any {
	v := it.Value()
	if !v.IsValid() {
		return nil
	}

	return v.Interface()
}

// sliceTruncate is the clear step for slice destinations: length drops to
// zero, the backing array is kept for reuse.
func sliceTruncate(s any) any {
	v := reflect.ValueOf(s)
	if !v.IsValid() || v.IsNil() {
		return s
	}

	return v.Slice(0, 0).Interface()
}

func slicePush(s, item any) any {
	v := reflect.ValueOf(s)

	return reflect.Append(v, adapt(item, v.Type().Elem())).Interface()
}

// instantiate builds a fresh instance of a pointer-to-struct collection
// type.
func instantiate(t reflect.Type) any { return reflect.New(t.Elem()).Interface() }

func collectionClear(c any) any {
	reflect.ValueOf(c).MethodByName("Clear").Call(nil)
	return c
}

func collectionAdd(c, item any) any {
	add := reflect.ValueOf(c).MethodByName("Add")
	add.Call([]reflect.Value{adapt(item, add.Type().In(0))})

	return c
}

func isReadOnly(c any) bool {
	if r, ok := c.(mapping.ReadOnlyReporter); ok {
		return r.ReadOnly()
	}

	return false
}

// mapElement routes one source element through a nested type map. A nil
// source maps to a nil destination without invoking the nested plan.
func mapElement(tm *mapping.TypeMap, src any, ctx *mapping.Context) any {
	srcVal := reflect.ValueOf(src)
	if !srcVal.IsValid() {
		srcVal = reflect.Zero(tm.Pair.Src)
	}

	if ir.Nilable(srcVal.Type()) && srcVal.IsNil() {
		return reflect.Zero(tm.Pair.Dst).Interface()
	}

	return tm.Invoke(srcVal, reflect.Zero(tm.Pair.Dst), ctx).Interface()
}

// adapt aligns a boxed value with an expected type: zero-fill for nil,
// boxing for interfaces, reflect conversion otherwise.
func adapt(item any, want reflect.Type) reflect.Value {
	v := reflect.ValueOf(item)
	if !v.IsValid() {
		return reflect.Zero(want)
	}

	if v.Type() == want {
		return v
	}

	if want.Kind() == reflect.Interface && v.Type().AssignableTo(want) {
		boxed := reflect.New(want).Elem()
		boxed.Set(v)

		return boxed
	}

	return v.Convert(want)
}
