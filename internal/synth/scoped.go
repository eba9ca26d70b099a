package synth

import (
	"io"
	"reflect"

	"remap/internal/ir"
)

var closerType = reflect.TypeOf((*io.Closer)(nil)).Elem()

// WithClose wraps body so that resource's close capability is released on
// every exit path, including panics.
//
// Three cases by static knowledge: a type known to implement io.Closer gets
// an unconditional scoped release; a type that cannot implement it is
// returned unwrapped; an interface type whose capability is unknown until
// run time gets a probing release (checked cast, close only when the probe
// lands on a non-nil closer).
func WithClose(resource, body ir.Expr) ir.Expr {
	t := resource.Type()

	switch {
	case t.Implements(closerType):
		return ir.NewScoped(resource, body, false)

	case t.Kind() == reflect.Interface:
		return ir.NewScoped(resource, body, true)

	default:
		return body
	}
}
