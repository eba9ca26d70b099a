// Package compile reduces an expression tree to a directly executable
// closure. The reduction happens once per plan; the resulting closure is
// what a mapping engine invokes per object, so each node compiles to its
// own step function instead of being re-dispatched through the tree on
// every call.
package compile

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"remap/internal/ir"
)

var ErrArgumentCount = errors.New("compiled plan invoked with wrong argument count")

// Fn is a compiled plan: a closure over the reduced tree. Panics raised
// during evaluation (faulting accessors, reflection misuse) surface as
// errors at this boundary.
type Fn func(args ...reflect.Value) (reflect.Value, error)

// ctrl is the unwind signal a Break raises; loops absorb signals carrying
// their own label and propagate the rest.
type ctrl struct{ label *ir.Label }

type step func(*scope) (reflect.Value, *ctrl)

// Reduce compiles a lambda bottom-up into a closure tree and wraps it as Fn.
func Reduce(l *ir.Lambda) Fn {
	body := compile(l.Body)
	params := l.Params

	return func(args ...reflect.Value) (ret reflect.Value, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("mapping plan fault: %v", r)
			}
		}()

		if len(args) != len(params) {
			return reflect.Value{}, fmt.Errorf("%w: want %d, got %d",
				ErrArgumentCount, len(params), len(args))
		}

		root := newScope(nil)
		for i, p := range params {
			root.bind(p.ID(), p.Type(), coerce(args[i], p.Type()))
		}

		v, c := body(root)
		if c != nil {
			panic(fmt.Sprintf("break to label %q escaped its loop", c.label.Name))
		}

		return v, nil
	}
}

func compile(e ir.Expr) step {
	switch e.Kind() {
	case ir.KindConst:
		v := e.(*ir.Const).Value
		return func(*scope) (reflect.Value, *ctrl) { return v, nil }

	case ir.KindParam, ir.KindVar:
		id := e.ID()
		return func(s *scope) (reflect.Value, *ctrl) {
			v, ok := s.lookup(id)
			if !ok {
				panic(fmt.Sprintf("compile: unbound variable %s", id))
			}

			return v, nil
		}

	case ir.KindMember:
		return compileMember(e.(*ir.Member))

	case ir.KindCall:
		return compileCall(e.(*ir.Call))

	case ir.KindCond:
		c := e.(*ir.Cond)
		test, then, alt := compile(c.Test), compile(c.Then), compile(c.Else)

		return func(s *scope) (reflect.Value, *ctrl) {
			v, sig := test(s)
			if sig != nil {
				return v, sig
			}

			if v.Bool() {
				return then(s)
			}

			return alt(s)
		}

	case ir.KindBlock:
		return compileBlock(e.(*ir.Block))

	case ir.KindLoop:
		l := e.(*ir.Loop)
		body, label := compile(l.Body), l.BreakLabel

		return func(s *scope) (reflect.Value, *ctrl) {
			for {
				v, sig := body(s)
				if sig == nil {
					continue
				}

				if sig.label == label {
					return reflect.Zero(ir.Void), nil
				}

				return v, sig
			}
		}

	case ir.KindBreak:
		label := e.(*ir.Break).Label
		return func(*scope) (reflect.Value, *ctrl) {
			return reflect.Zero(ir.Void), &ctrl{label: label}
		}

	case ir.KindAssign:
		return compileAssign(e.(*ir.Assign))

	case ir.KindEqual:
		eq := e.(*ir.Equal)
		left, right := compile(eq.Left), compile(eq.Right)
		negated := eq.Negated

		return func(s *scope) (reflect.Value, *ctrl) {
			lv, sig := left(s)
			if sig != nil {
				return lv, sig
			}

			rv, sig := right(s)
			if sig != nil {
				return rv, sig
			}

			return reflect.ValueOf(equalValues(lv, rv) != negated), nil
		}

	case ir.KindConvert:
		c := e.(*ir.Convert)
		operand, typ := compile(c.Operand), c.Type()

		return func(s *scope) (reflect.Value, *ctrl) {
			v, sig := operand(s)
			if sig != nil {
				return v, sig
			}

			return coerce(v, typ), nil
		}

	case ir.KindLambda:
		// A nested lambda reduces to its own closure value.
		fn := Reduce(e.(*ir.Lambda))
		v := reflect.ValueOf(fn)

		return func(*scope) (reflect.Value, *ctrl) { return v, nil }

	case ir.KindScoped:
		return compileScoped(e.(*ir.Scoped))

	default:
		panic(fmt.Sprintf("compile: unknown expression kind %d", e.Kind()))
	}
}

func compileMember(m *ir.Member) step {
	target := compile(m.Target)
	mem := m.Mem

	switch mem.Kind {
	case ir.MemberField:
		index := mem.Field.Index

		return func(s *scope) (reflect.Value, *ctrl) {
			v, sig := target(s)
			if sig != nil {
				return v, sig
			}

			for v.Kind() == reflect.Ptr {
				if v.IsNil() {
					panic(fmt.Sprintf("nil dereference reading field %s of %s", mem.Name, mem.Owner))
				}

				v = v.Elem()
			}

			return v.FieldByIndex(index), nil
		}

	case ir.MemberGetter, ir.MemberMethod:
		fn := mem.Func

		return func(s *scope) (reflect.Value, *ctrl) {
			v, sig := target(s)
			if sig != nil {
				return v, sig
			}

			return fn.Call([]reflect.Value{coerce(v, fn.Type().In(0))})[0], nil
		}

	default:
		panic(fmt.Sprintf("compile: member access through %s member %s", mem.Kind, mem.Name))
	}
}

func compileCall(c *ir.Call) step {
	fn := c.Mem.Func
	fnType := fn.Type()

	var target step
	if c.Target != nil {
		target = compile(c.Target)
	}

	args := make([]step, len(c.Args))
	for i, a := range c.Args {
		args[i] = compile(a)
	}

	return func(s *scope) (reflect.Value, *ctrl) {
		in := make([]reflect.Value, 0, len(args)+1)

		if target != nil {
			v, sig := target(s)
			if sig != nil {
				return v, sig
			}

			in = append(in, v)
		}

		for _, arg := range args {
			v, sig := arg(s)
			if sig != nil {
				return v, sig
			}

			in = append(in, v)
		}

		for i := range in {
			if !fnType.IsVariadic() || i < fnType.NumIn()-1 {
				in[i] = coerce(in[i], fnType.In(i))
			}
		}

		out := fn.Call(in)

		return out[0], nil
	}
}

func compileBlock(b *ir.Block) step {
	vars := b.Vars

	list := make([]step, len(b.List))
	for i, e := range b.List {
		list[i] = compile(e)
	}

	return func(s *scope) (reflect.Value, *ctrl) {
		frame := newScope(s)
		for _, v := range vars {
			frame.bind(v.ID(), v.Type(), reflect.Value{})
		}

		var last reflect.Value
		for _, item := range list {
			v, sig := item(frame)
			if sig != nil {
				return v, sig
			}

			last = v
		}

		return last, nil
	}
}

func compileAssign(a *ir.Assign) step {
	value := compile(a.Value)

	switch a.Target.Kind() {
	case ir.KindParam, ir.KindVar:
		id, typ := a.Target.ID(), a.Target.Type()

		return func(s *scope) (reflect.Value, *ctrl) {
			v, sig := value(s)
			if sig != nil {
				return v, sig
			}

			v = coerce(v, typ)
			s.set(id, v)

			return v, nil
		}

	case ir.KindMember:
		m := a.Target.(*ir.Member)
		if m.Mem.Kind != ir.MemberField {
			panic(fmt.Sprintf("compile: assignment to %s member %s", m.Mem.Kind, m.Mem.Name))
		}

		target, index, typ := compile(m.Target), m.Mem.Field.Index, m.Mem.Type()

		return func(s *scope) (reflect.Value, *ctrl) {
			holder, sig := target(s)
			if sig != nil {
				return holder, sig
			}

			for holder.Kind() == reflect.Ptr {
				if holder.IsNil() {
					panic(fmt.Sprintf("nil dereference writing field %s", m.Mem.Name))
				}

				holder = holder.Elem()
			}

			v, sig := value(s)
			if sig != nil {
				return v, sig
			}

			v = coerce(v, typ)
			holder.FieldByIndex(index).Set(v)

			return v, nil
		}

	default:
		panic(fmt.Sprintf("compile: assignment to %s expression", a.Target.Kind()))
	}
}

func compileScoped(sc *ir.Scoped) step {
	resource, body := compile(sc.Resource), compile(sc.Body)

	return func(s *scope) (ret reflect.Value, sig *ctrl) {
		res, rsig := resource(s)
		if rsig != nil {
			return res, rsig
		}

		// The deferred release runs on normal return, break unwind, and panic.
		defer release(res)

		return body(s)
	}
}

// release invokes the close capability of v when present. Close errors are
// dropped: resource release failure must not override the mapping result.
func release(v reflect.Value) {
	if !v.IsValid() || !v.CanInterface() {
		return
	}

	if ir.Nilable(v.Type()) && v.IsNil() {
		return
	}

	if closer, ok := v.Interface().(io.Closer); ok {
		_ = closer.Close()
	}
}

// equalValues is the reference/value equality the Equal node performs. Nil
// on either side compares by nilness; comparable values compare with ==;
// everything else is unequal.
func equalValues(l, r reflect.Value) bool {
	ln, rn := isNilValue(l), isNilValue(r)
	if ln || rn {
		return ln == rn
	}

	if l.Kind() == reflect.Interface {
		l = l.Elem()
	}

	if r.Kind() == reflect.Interface {
		r = r.Elem()
	}

	if l.Type() != r.Type() || !l.Comparable() {
		return false
	}

	return l.Equal(r)
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	if v.Kind() == reflect.Interface && !v.IsNil() {
		return isNilValue(v.Elem())
	}

	return ir.Nilable(v.Type()) && v.IsNil()
}

// coerce adapts v to the target static type: identity when types match,
// interface boxing when assignable, reflect conversion when convertible,
// and zero-fill for invalid or nil-to-nilable cases.
func coerce(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}

	if v.Type() == t {
		return v
	}

	if t.Kind() == reflect.Interface && v.Type().AssignableTo(t) {
		boxed := reflect.New(t).Elem()
		boxed.Set(v)

		return boxed
	}

	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Zero(t)
		}

		return coerce(v.Elem(), t)
	}

	if v.Type().AssignableTo(t) || v.Type().ConvertibleTo(t) {
		return v.Convert(t)
	}

	panic(fmt.Sprintf("compile: cannot coerce %s to %s", v.Type(), t))
}
