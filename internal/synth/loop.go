package synth

import (
	"reflect"

	"remap/internal/ir"
)

var intType = reflect.TypeOf(0)

// ForEach synthesizes iteration over src, binding each element to item and
// running body once per element. Contiguous sources (slices, arrays) get
// the counted variant; everything else goes through an enumerator.
func ForEach(src ir.Expr, item *ir.Var, body ir.Expr) ir.Expr {
	switch src.Type().Kind() {
	case reflect.Slice, reflect.Array:
		return IndexLoop(src, item, body)
	default:
		return IteratorLoop(src, item, body)
	}
}

// IndexLoop is the counted variant: an integer index from zero to the
// source length, element read per iteration, index incremented after the
// body.
func IndexLoop(src ir.Expr, item *ir.Var, body ir.Expr) ir.Expr {
	brk := ir.NewLabel("brk")
	i := ir.NewVar("i", intType)
	n := ir.NewVar("n", intType)

	iteration := ir.NewBlock([]*ir.Var{item},
		ir.NewAssign(item, ir.NewConvert(ir.NewCall(fnAt, nil, src, i), item.Type())),
		body,
		ir.NewAssign(i, ir.NewCall(fnInc, nil, i)),
	)

	return ir.NewBlock([]*ir.Var{i, n},
		ir.NewAssign(i, ir.NewConst(0)),
		ir.NewAssign(n, ir.NewCall(fnLen, nil, src)),
		ir.NewLoop(
			ir.NewCond(ir.NewCall(fnLess, nil, i, n), iteration, ir.NewBreak(brk)),
			brk,
		),
	)
}

// IteratorLoop is the general variant: materialize an enumerator, loop
// while it advances, bind the loop variable from its current element. The
// loop is close-scoped so the enumerator is released when iteration
// completes, breaks, or faults.
func IteratorLoop(src ir.Expr, item *ir.Var, body ir.Expr) ir.Expr {
	brk := ir.NewLabel("brk")
	it := ir.NewVar("it", fnEnumerate.Type())

	iteration := ir.NewBlock([]*ir.Var{item},
		ir.NewAssign(item, ir.NewConvert(ir.NewCall(fnCurrent, nil, it), item.Type())),
		body,
	)

	loop := ir.NewLoop(
		ir.NewCond(ir.NewCall(fnNext, nil, it), iteration, ir.NewBreak(brk)),
		brk,
	)

	return ir.NewBlock([]*ir.Var{it},
		ir.NewAssign(it, ir.NewCall(fnEnumerate, nil, src)),
		WithClose(it, loop),
	)
}
