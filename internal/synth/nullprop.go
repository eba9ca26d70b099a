package synth

import (
	"fmt"
	"reflect"

	"remap/internal/chain"
	"remap/internal/ir"
	"remap/internal/rewrite"
)

// NullGuard turns an expression whose member chain may fault on a nil link
// into a short-circuiting guarded form: one temporary per link, each
// assigned inside the guard disjunction so no link past the first nil one
// is ever evaluated, and a final conditional yielding the destination
// type's zero value when any guard tripped.
//
// An expression whose chain is not rooted at a free parameter is returned
// unmodified (no guarding possible or needed), coerced to destType when one
// is supplied. Non-nilable links contribute no runtime test, only their
// temporary; a chain with no nilable link at all degenerates to
// unconditional evaluation.
func NullGuard(e ir.Expr, destType reflect.Type) ir.Expr {
	return NullGuardElse(e, destType, nil)
}

// NullGuardElse is NullGuard with an explicit fallback: when any guard
// trips, otherwise is evaluated instead of the destination type's zero
// value. A nil otherwise keeps the zero-value behavior.
func NullGuardElse(e ir.Expr, destType reflect.Type, otherwise ir.Expr) ir.Expr {
	links := chain.Resolve(e)

	if len(links) == 0 || links.Root().Kind() != ir.KindParam {
		return retype(e, destType)
	}

	if destType == nil {
		destType = e.Type()
	}

	vars := make([]*ir.Var, len(links))
	for i, link := range links {
		vars[i] = ir.NewVar(fmt.Sprintf("t%d", i), link.Target.Type())
	}

	// Each guard operand both materializes its temporary and tests it, so
	// the short-circuit OR chain stops assigning past the first nil link.
	var guard ir.Expr

	tested := false

	for i, link := range links {
		target := link.Target
		if i > 0 {
			target = rewrite.Replace(target, links[i-1].Target, vars[i-1])
		}

		assign := ir.NewAssign(vars[i], target)

		var operand ir.Expr
		if ir.Nilable(vars[i].Type()) {
			operand = ir.NewEqual(assign, ir.Zero(vars[i].Type()))
			tested = true
		} else {
			// No runtime test for a non-nilable link; the temporary is still
			// materialized.
			operand = ir.NewBlock(nil, assign, ir.NewConst(false))
		}

		if guard == nil {
			guard = operand
		} else {
			guard = ir.OrElse(guard, operand)
		}
	}

	last := len(links) - 1
	leaf := rewrite.Replace(links[last].Access, links[last].Target, vars[last])
	value := retype(leaf, destType)

	if !tested {
		// Statically guard-free: evaluate unconditionally, temporaries and
		// all.
		list := make([]ir.Expr, 0, len(links)+1)

		for i, link := range links {
			target := link.Target
			if i > 0 {
				target = rewrite.Replace(target, links[i-1].Target, vars[i-1])
			}

			list = append(list, ir.NewAssign(vars[i], target))
		}

		return ir.NewBlock(vars, append(list, value)...)
	}

	fallback := ir.Expr(ir.Zero(destType))
	if otherwise != nil {
		fallback = retype(otherwise, destType)
	}

	return ir.NewBlock(vars,
		ir.NewCond(guard, fallback, value),
	)
}

func retype(e ir.Expr, t reflect.Type) ir.Expr {
	if t == nil || t == e.Type() {
		return e
	}

	return ir.NewConvert(e, t)
}
