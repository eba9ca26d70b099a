package compile_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remap/internal/compile"
	"remap/internal/ir"
)

type point struct {
	X, Y int
}

type holder struct {
	P *point
}

func eval(t *testing.T, l *ir.Lambda, args ...any) reflect.Value {
	t.Helper()

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a)
	}

	out, err := compile.Reduce(l)(in...)
	require.NoError(t, err)

	return out
}

func TestReduce_Passthrough(t *testing.T) {
	p := ir.NewParam("x", reflect.TypeFor[int]())
	out := eval(t, ir.NewLambda(p, p), 41)

	assert.Equal(t, 41, out.Interface())
}

func TestReduce_Convert(t *testing.T) {
	p := ir.NewParam("x", reflect.TypeFor[int]())
	l := ir.NewLambda(ir.NewConvert(p, reflect.TypeFor[int64]()), p)

	assert.Equal(t, int64(7), eval(t, l, 7).Interface())
}

func TestReduce_ArgumentCount(t *testing.T) {
	p := ir.NewParam("x", reflect.TypeFor[int]())
	_, err := compile.Reduce(ir.NewLambda(p, p))()

	assert.ErrorIs(t, err, compile.ErrArgumentCount)
}

func TestReduce_CondAndEqual(t *testing.T) {
	p := ir.NewParam("x", reflect.TypeFor[int]())
	l := ir.NewLambda(
		ir.NewCond(
			ir.NewEqual(p, ir.NewConst(0)),
			ir.NewConst("zero"),
			ir.NewConst("other"),
		),
		p,
	)

	assert.Equal(t, "zero", eval(t, l, 0).Interface())
	assert.Equal(t, "other", eval(t, l, 3).Interface())
}

func TestReduce_EqualOnNilables(t *testing.T) {
	p := ir.NewParam("x", reflect.TypeFor[*point]())
	l := ir.NewLambda(ir.NewEqual(p, ir.Zero(reflect.TypeFor[*point]())), p)

	assert.Equal(t, true, eval(t, l, (*point)(nil)).Interface())
	assert.Equal(t, false, eval(t, l, &point{}).Interface())
}

func TestReduce_BlockVarsAndAssign(t *testing.T) {
	intT := reflect.TypeFor[int]()
	p := ir.NewParam("x", intT)
	v := ir.NewVar("v", intT)

	l := ir.NewLambda(
		ir.NewBlock([]*ir.Var{v},
			ir.NewAssign(v, p),
			ir.NewAssign(v, ir.NewConvert(v, intT)),
			v,
		),
		p,
	)

	assert.Equal(t, 9, eval(t, l, 9).Interface())
}

func TestReduce_MemberFieldRead(t *testing.T) {
	p := ir.NewParam("pt", reflect.TypeFor[point]())
	l := ir.NewLambda(ir.NewMember(p, ir.MustField(reflect.TypeFor[point](), "X")), p)

	assert.Equal(t, 3, eval(t, l, point{X: 3}).Interface())
}

func TestReduce_MemberFieldReadThroughPointer(t *testing.T) {
	p := ir.NewParam("pt", reflect.TypeFor[*point]())
	l := ir.NewLambda(ir.NewMember(p, ir.MustField(reflect.TypeFor[*point](), "Y")), p)

	assert.Equal(t, 4, eval(t, l, &point{Y: 4}).Interface())
}

func TestReduce_NilDereferenceSurfacesAsError(t *testing.T) {
	p := ir.NewParam("pt", reflect.TypeFor[*point]())
	l := ir.NewLambda(ir.NewMember(p, ir.MustField(reflect.TypeFor[*point](), "X")), p)

	_, err := compile.Reduce(l)(reflect.ValueOf((*point)(nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil dereference")
}

func TestReduce_MemberFieldWrite(t *testing.T) {
	p := ir.NewParam("x", reflect.TypeFor[int]())
	out := ir.NewVar("out", reflect.TypeFor[point]())
	mem := ir.MustField(reflect.TypeFor[point](), "X")

	l := ir.NewLambda(
		ir.NewBlock([]*ir.Var{out},
			ir.NewAssign(ir.NewMember(out, mem), p),
			out,
		),
		p,
	)

	assert.Equal(t, point{X: 5}, eval(t, l, 5).Interface())
}

func TestReduce_MemberFieldWriteThroughPointer(t *testing.T) {
	p := ir.NewParam("h", reflect.TypeFor[*point]())
	mem := ir.MustField(reflect.TypeFor[*point](), "X")

	l := ir.NewLambda(
		ir.NewBlock(nil,
			ir.NewAssign(ir.NewMember(p, mem), ir.NewConst(8)),
			p,
		),
		p,
	)

	target := &point{X: 1}
	out := eval(t, l, target)

	assert.Same(t, target, out.Interface())
	assert.Equal(t, 8, target.X)
}

func TestReduce_GetterCall(t *testing.T) {
	getter, err := ir.GetterOf(reflect.TypeFor[timer](), "Elapsed")
	require.NoError(t, err)

	p := ir.NewParam("t", reflect.TypeFor[timer]())
	l := ir.NewLambda(ir.NewMember(p, getter), p)

	assert.Equal(t, 11, eval(t, l, timer{elapsed: 11}).Interface())
}

type timer struct {
	elapsed int
}

func (t timer) Elapsed() int { return t.elapsed }

func TestReduce_FreeFunctionCall(t *testing.T) {
	double := ir.MustFunc("double", func(x int) int { return 2 * x })

	p := ir.NewParam("x", reflect.TypeFor[int]())
	l := ir.NewLambda(ir.NewCall(double, nil, p), p)

	assert.Equal(t, 12, eval(t, l, 6).Interface())
}

func TestReduce_LoopAbsorbsOwnBreak(t *testing.T) {
	counter := 0
	tick := ir.MustFunc("tick", func() bool {
		counter++
		return counter < 4
	})

	brk := ir.NewLabel("brk")
	l := ir.NewLambda(
		ir.NewBlock(nil,
			ir.NewLoop(
				ir.NewCond(ir.NewCall(tick, nil), ir.NewConst(0), ir.NewBreak(brk)),
				brk,
			),
			ir.NewConst("done"),
		),
	)

	assert.Equal(t, "done", eval(t, l).Interface())
	assert.Equal(t, 4, counter)
}

func TestReduce_BreakUnwindsNestedBlocks(t *testing.T) {
	ran := false
	after := ir.MustFunc("after", func() int {
		ran = true
		return 0
	})

	brk := ir.NewLabel("brk")
	l := ir.NewLambda(
		ir.NewBlock(nil,
			ir.NewLoop(
				ir.NewBlock(nil,
					ir.NewBreak(brk),
					ir.NewCall(after, nil),
				),
				brk,
			),
			ir.NewConst(true),
		),
	)

	assert.Equal(t, true, eval(t, l).Interface())
	assert.False(t, ran, "statements after a break must not run")
}

func TestReduce_EscapedBreakIsAFault(t *testing.T) {
	l := ir.NewLambda(ir.NewBreak(ir.NewLabel("orphan")))

	_, err := compile.Reduce(l)()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orphan")
}

type probe struct {
	closed int
}

func (p *probe) Close() error {
	p.closed++
	return nil
}

func TestReduce_ScopedClosesOnReturn(t *testing.T) {
	p := ir.NewParam("r", reflect.TypeFor[*probe]())
	l := ir.NewLambda(ir.NewScoped(p, ir.NewConst("ok"), false), p)

	res := &probe{}
	assert.Equal(t, "ok", eval(t, l, res).Interface())
	assert.Equal(t, 1, res.closed)
}

func TestReduce_ScopedClosesOnBreak(t *testing.T) {
	p := ir.NewParam("r", reflect.TypeFor[*probe]())
	brk := ir.NewLabel("brk")

	l := ir.NewLambda(
		ir.NewBlock(nil,
			ir.NewLoop(ir.NewScoped(p, ir.NewBreak(brk), false), brk),
			ir.NewConst(0),
		),
		p,
	)

	res := &probe{}
	eval(t, l, res)
	assert.Equal(t, 1, res.closed)
}

func TestReduce_ScopedClosesOnPanic(t *testing.T) {
	boom := ir.MustFunc("boom", func() int { panic("boom") })

	p := ir.NewParam("r", reflect.TypeFor[*probe]())
	l := ir.NewLambda(ir.NewScoped(p, ir.NewCall(boom, nil), false), p)

	res := &probe{}
	_, err := compile.Reduce(l)(reflect.ValueOf(res))

	require.Error(t, err)
	assert.Equal(t, 1, res.closed)
}

func TestReduce_ScopedProbeSkipsNonClosers(t *testing.T) {
	p := ir.NewParam("r", reflect.TypeFor[any]())
	l := ir.NewLambda(ir.NewScoped(p, ir.NewConst("ok"), true), p)

	// Plain values and nil both pass through the probing release untouched.
	assert.Equal(t, "ok", eval(t, l, any(42)).Interface())

	out, err := compile.Reduce(l)(reflect.Zero(reflect.TypeFor[any]()))
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Interface())
}

func TestReduce_NestedLambdaYieldsClosure(t *testing.T) {
	inner := ir.NewLambda(ir.NewConst(1))
	l := ir.NewLambda(inner)

	out := eval(t, l)
	fn, ok := out.Interface().(compile.Fn)
	require.True(t, ok)

	v, err := fn()
	require.NoError(t, err)
	assert.Equal(t, 1, v.Interface())
}
