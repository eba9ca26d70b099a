package ir

import (
	"fmt"
	"reflect"
	"strings"
)

// String renders a tree in a compact, deterministic form. Node identifiers
// never appear in the output, so two structurally equivalent trees render
// identically; error messages and golden tests both rely on that.
func String(e Expr) string {
	var b strings.Builder
	writeExpr(&b, e)

	return b.String()
}

func writeExpr(b *strings.Builder, e Expr) {
	switch e.Kind() {
	case KindConst:
		writeConst(b, e.(*Const))

	case KindParam:
		b.WriteString("$" + e.(*Param).Name)

	case KindVar:
		b.WriteString("#" + e.(*Var).Name)

	case KindMember:
		m := e.(*Member)
		writeExpr(b, m.Target)
		b.WriteString("." + m.Mem.Name)

	case KindCall:
		c := e.(*Call)
		if c.Target != nil {
			writeExpr(b, c.Target)
			b.WriteString(".")
		}

		b.WriteString(c.Mem.Name + "(")
		writeList(b, c.Args)
		b.WriteString(")")

	case KindCond:
		c := e.(*Cond)
		b.WriteString("(")
		writeExpr(b, c.Test)
		b.WriteString(" ? ")
		writeExpr(b, c.Then)
		b.WriteString(" : ")
		writeExpr(b, c.Else)
		b.WriteString(")")

	case KindBlock:
		blk := e.(*Block)
		b.WriteString("block(")

		for i, v := range blk.Vars {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString("#" + v.Name)
		}

		b.WriteString("){")

		for i, item := range blk.List {
			if i > 0 {
				b.WriteString("; ")
			}

			writeExpr(b, item)
		}

		b.WriteString("}")

	case KindLoop:
		l := e.(*Loop)
		b.WriteString("loop[" + l.BreakLabel.Name + "]{")
		writeExpr(b, l.Body)
		b.WriteString("}")

	case KindBreak:
		b.WriteString("break[" + e.(*Break).Label.Name + "]")

	case KindAssign:
		a := e.(*Assign)
		b.WriteString("(")
		writeExpr(b, a.Target)
		b.WriteString(" := ")
		writeExpr(b, a.Value)
		b.WriteString(")")

	case KindEqual:
		eq := e.(*Equal)
		op := " == "
		if eq.Negated {
			op = " != "
		}

		b.WriteString("(")
		writeExpr(b, eq.Left)
		b.WriteString(op)
		writeExpr(b, eq.Right)
		b.WriteString(")")

	case KindConvert:
		c := e.(*Convert)
		b.WriteString("cast[" + c.typ.String() + "](")
		writeExpr(b, c.Operand)
		b.WriteString(")")

	case KindLambda:
		l := e.(*Lambda)
		b.WriteString("fn(")

		for i, p := range l.Params {
			if i > 0 {
				b.WriteString(", ")
			}

			b.WriteString("$" + p.Name)
		}

		b.WriteString("){")
		writeExpr(b, l.Body)
		b.WriteString("}")

	case KindScoped:
		s := e.(*Scoped)
		if s.Probe {
			b.WriteString("scoped?(")
		} else {
			b.WriteString("scoped(")
		}

		writeExpr(b, s.Resource)
		b.WriteString("){")
		writeExpr(b, s.Body)
		b.WriteString("}")

	default:
		panic(fmt.Sprintf("ir: unknown expression kind %d", e.Kind()))
	}
}

func writeList(b *strings.Builder, list []Expr) {
	for i, e := range list {
		if i > 0 {
			b.WriteString(", ")
		}

		writeExpr(b, e)
	}
}

func writeConst(b *strings.Builder, c *Const) {
	if !c.Value.IsValid() {
		b.WriteString("nil")
		return
	}

	if Nilable(c.typ) && c.Value.IsNil() {
		b.WriteString("nil")
		return
	}

	switch c.Value.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		fmt.Fprintf(b, "%v", c.Value.Interface())

	case reflect.String:
		fmt.Fprintf(b, "%q", c.Value.Interface())

	default:
		if c.Value.IsZero() {
			b.WriteString("zero[" + c.typ.String() + "]")
		} else {
			b.WriteString("const[" + c.typ.String() + "]")
		}
	}
}
