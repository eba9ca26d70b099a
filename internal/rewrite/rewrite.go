// Package rewrite holds the pure tree-substitution passes the rest of the
// compiler composes: subtree replacement and lambda parameter replacement,
// with and without implicit coercion.
//
// All passes share one discipline: they never mutate an input tree. Nodes a
// substitution does not touch are shared between input and output, which is
// safe because trees are immutable after construction.
package rewrite

import (
	"fmt"

	"remap/internal/ir"
)

// Replace substitutes every occurrence of old (matched by node identifier)
// with repl and returns the rewritten tree.
func Replace(tree, old, repl ir.Expr) ir.Expr {
	return apply(tree, map[ir.NodeID]ir.Expr{old.ID(): repl})
}

// Parameters substitutes a lambda's formals, in positional order, with the
// supplied expressions and returns the rewritten body. Substitution stops
// after min(len(repl), len(formals)) parameters.
func Parameters(l *ir.Lambda, repl ...ir.Expr) ir.Expr {
	sub := make(map[ir.NodeID]ir.Expr, len(repl))

	for i, p := range l.Params {
		if i >= len(repl) {
			break
		}

		sub[p.ID()] = repl[i]
	}

	return apply(l.Body, sub)
}

// TypedParameters is Parameters with each replacement first coerced to the
// exact type of the formal it stands in for, so the resulting tree
// type-checks even when replacements carry a compatible-but-different
// static type.
func TypedParameters(l *ir.Lambda, repl ...ir.Expr) ir.Expr {
	coerced := make([]ir.Expr, len(repl))

	for i, r := range repl {
		if i < len(l.Params) && r.Type() != l.Params[i].Type() {
			r = ir.NewConvert(r, l.Params[i].Type())
		}

		coerced[i] = r
	}

	return Parameters(l, coerced...)
}

// apply walks the tree once, swapping in substitutes wherever a node's
// identifier matches. Untouched subtrees are returned as-is.
func apply(e ir.Expr, sub map[ir.NodeID]ir.Expr) ir.Expr {
	if r, ok := sub[e.ID()]; ok {
		return r
	}

	switch e.Kind() {
	case ir.KindConst, ir.KindParam, ir.KindVar, ir.KindBreak:
		return e

	case ir.KindMember:
		m := e.(*ir.Member)
		if target := apply(m.Target, sub); target != m.Target {
			return ir.NewMember(target, m.Mem)
		}

		return e

	case ir.KindCall:
		c := e.(*ir.Call)
		changed := false

		var target ir.Expr
		if c.Target != nil {
			target = apply(c.Target, sub)
			changed = target != c.Target
		}

		args := make([]ir.Expr, len(c.Args))
		for i, a := range c.Args {
			args[i] = apply(a, sub)
			changed = changed || args[i] != a
		}

		if !changed {
			return e
		}

		return ir.NewCall(c.Mem, target, args...)

	case ir.KindCond:
		c := e.(*ir.Cond)
		test, then, alt := apply(c.Test, sub), apply(c.Then, sub), apply(c.Else, sub)

		if test == c.Test && then == c.Then && alt == c.Else {
			return e
		}

		return ir.NewCond(test, then, alt)

	case ir.KindBlock:
		b := e.(*ir.Block)
		changed := false

		list := make([]ir.Expr, len(b.List))
		for i, item := range b.List {
			list[i] = apply(item, sub)
			changed = changed || list[i] != item
		}

		if !changed {
			return e
		}

		return ir.NewBlock(b.Vars, list...)

	case ir.KindLoop:
		l := e.(*ir.Loop)
		if body := apply(l.Body, sub); body != l.Body {
			return ir.NewLoop(body, l.BreakLabel)
		}

		return e

	case ir.KindAssign:
		a := e.(*ir.Assign)
		target, value := apply(a.Target, sub), apply(a.Value, sub)

		if target == a.Target && value == a.Value {
			return e
		}

		return ir.NewAssign(target, value)

	case ir.KindEqual:
		eq := e.(*ir.Equal)
		left, right := apply(eq.Left, sub), apply(eq.Right, sub)

		if left == eq.Left && right == eq.Right {
			return e
		}

		if eq.Negated {
			return ir.NewNotEqual(left, right)
		}

		return ir.NewEqual(left, right)

	case ir.KindConvert:
		c := e.(*ir.Convert)
		if operand := apply(c.Operand, sub); operand != c.Operand {
			return ir.NewConvert(operand, c.Type())
		}

		return e

	case ir.KindLambda:
		l := e.(*ir.Lambda)
		if body := apply(l.Body, sub); body != l.Body {
			return ir.NewLambda(body, l.Params...)
		}

		return e

	case ir.KindScoped:
		s := e.(*ir.Scoped)
		resource, body := apply(s.Resource, sub), apply(s.Body, sub)

		if resource == s.Resource && body == s.Body {
			return e
		}

		return ir.NewScoped(resource, body, s.Probe)

	default:
		panic(fmt.Sprintf("rewrite: unknown expression kind %d", e.Kind()))
	}
}
