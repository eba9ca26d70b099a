// Package ir defines the expression tree a mapping rule is compiled into
// before reduction to an executable closure.
//
// Nodes form a closed sum type tagged by Kind. Trees are immutable once
// built: rewriting passes construct new trees rather than patching shared
// ones. Every node carries a NodeID assigned at construction; subtree
// replacement matches on that identifier, never on structure.
package ir

import (
	"reflect"

	"github.com/google/uuid"
)

// NodeID is the stable identifier a node receives at construction.
type NodeID string

func newID() NodeID { return NodeID(uuid.NewString()) }

// Void is the type of expressions evaluated only for effect (loops, breaks).
var Void = reflect.TypeOf(struct{}{})

// Expr is one node of the expression tree.
type Expr interface {
	ID() NodeID
	Kind() Kind
	// Type is the static type evaluating this node yields.
	Type() reflect.Type
}

type node struct{ id NodeID }

func newNode() node { return node{id: newID()} }

func (n node) ID() NodeID { return n.id }

// Label names the single break point of a loop.
type Label struct {
	id   NodeID
	Name string
}

// NewLabel creates a break label.
func NewLabel(name string) *Label { return &Label{id: newID(), Name: name} }

// Const is a literal value.
type Const struct {
	node
	Value reflect.Value
	typ   reflect.Type
}

// NewConst wraps a Go value as a constant node.
func NewConst(v any) *Const {
	val := reflect.ValueOf(v)
	return &Const{node: newNode(), Value: val, typ: val.Type()}
}

// Zero is the typed zero value of t: nil for nilable kinds, the empty value
// otherwise. This is what guarded expressions yield when a chain link is nil.
func Zero(t reflect.Type) *Const {
	return &Const{node: newNode(), Value: reflect.Zero(t), typ: t}
}

func (e *Const) Kind() Kind         { return KindConst }
func (e *Const) Type() reflect.Type { return e.typ }

// Param is a formal parameter of a Lambda.
type Param struct {
	node
	Name string
	typ  reflect.Type
}

// NewParam declares a lambda formal.
func NewParam(name string, t reflect.Type) *Param {
	return &Param{node: newNode(), Name: name, typ: t}
}

func (e *Param) Kind() Kind         { return KindParam }
func (e *Param) Type() reflect.Type { return e.typ }

// Var is a block-scoped local variable; the same node serves as its
// declaration (listed in Block.Vars) and every reference to it.
type Var struct {
	node
	Name string
	typ  reflect.Type
}

// NewVar declares a local variable.
func NewVar(name string, t reflect.Type) *Var {
	return &Var{node: newNode(), Name: name, typ: t}
}

func (e *Var) Kind() Kind         { return KindVar }
func (e *Var) Type() reflect.Type { return e.typ }

// Member reads a field or getter off Target.
type Member struct {
	node
	Target Expr
	Mem    *MemberInfo
}

// NewMember builds an access step through a field or getter descriptor.
func NewMember(target Expr, mem *MemberInfo) *Member {
	return &Member{node: newNode(), Target: target, Mem: mem}
}

func (e *Member) Kind() Kind         { return KindMember }
func (e *Member) Type() reflect.Type { return e.Mem.Type() }

// Call invokes a method (Target set) or a free/extension function (Target
// nil; for extensions the receiver is Args[0]).
type Call struct {
	node
	Mem    *MemberInfo
	Target Expr
	Args   []Expr
}

// NewCall builds an invocation node.
func NewCall(mem *MemberInfo, target Expr, args ...Expr) *Call {
	return &Call{node: newNode(), Mem: mem, Target: target, Args: args}
}

func (e *Call) Kind() Kind         { return KindCall }
func (e *Call) Type() reflect.Type { return e.Mem.Type() }

// Cond is the ternary conditional.
type Cond struct {
	node
	Test, Then, Else Expr
}

// NewCond builds a conditional; its static type is the type of the Then arm.
func NewCond(test, then, alt Expr) *Cond {
	return &Cond{node: newNode(), Test: test, Then: then, Else: alt}
}

// OrElse is short-circuit disjunction, desugared to a conditional so the
// node set stays closed.
func OrElse(left, right Expr) Expr {
	return NewCond(left, NewConst(true), right)
}

func (e *Cond) Kind() Kind         { return KindCond }
func (e *Cond) Type() reflect.Type { return e.Then.Type() }

// Block evaluates List in order inside a scope declaring Vars; it yields the
// last expression's value.
type Block struct {
	node
	Vars []*Var
	List []Expr
}

// NewBlock builds a scope node. It panics on an empty body: a block always
// yields its last expression.
func NewBlock(vars []*Var, list ...Expr) *Block {
	if len(list) == 0 {
		panic("ir: block requires at least one expression")
	}

	return &Block{node: newNode(), Vars: vars, List: list}
}

func (e *Block) Kind() Kind         { return KindBlock }
func (e *Block) Type() reflect.Type { return e.List[len(e.List)-1].Type() }

// Loop repeats Body until a Break targeting BreakLabel unwinds it.
type Loop struct {
	node
	Body       Expr
	BreakLabel *Label
}

// NewLoop builds an endless loop terminated only through its break label.
func NewLoop(body Expr, brk *Label) *Loop {
	return &Loop{node: newNode(), Body: body, BreakLabel: brk}
}

func (e *Loop) Kind() Kind         { return KindLoop }
func (e *Loop) Type() reflect.Type { return Void }

// Break unwinds to the loop owning Label.
type Break struct {
	node
	Label *Label
}

// NewBreak builds a break jump.
func NewBreak(label *Label) *Break { return &Break{node: newNode(), Label: label} }

func (e *Break) Kind() Kind         { return KindBreak }
func (e *Break) Type() reflect.Type { return Void }

// Assign stores Value into Target (a Var, Param, or settable Member) and
// yields the stored value.
type Assign struct {
	node
	Target, Value Expr
}

// NewAssign builds an assignment.
func NewAssign(target, value Expr) *Assign {
	return &Assign{node: newNode(), Target: target, Value: value}
}

func (e *Assign) Kind() Kind         { return KindAssign }
func (e *Assign) Type() reflect.Type { return e.Target.Type() }

// Equal is the reference/value equality test; Negated flips it.
type Equal struct {
	node
	Left, Right Expr
	Negated     bool
}

// NewEqual builds an equality test.
func NewEqual(left, right Expr) *Equal {
	return &Equal{node: newNode(), Left: left, Right: right}
}

// NewNotEqual builds a negated equality test.
func NewNotEqual(left, right Expr) *Equal {
	return &Equal{node: newNode(), Left: left, Right: right, Negated: true}
}

func (e *Equal) Kind() Kind         { return KindEqual }
func (e *Equal) Type() reflect.Type { return reflect.TypeOf(true) }

// Convert coerces Operand to a target static type.
type Convert struct {
	node
	Operand Expr
	typ     reflect.Type
}

// NewConvert builds a coercion node. Converting to the operand's own type is
// allowed and reduces to the operand at evaluation.
func NewConvert(operand Expr, t reflect.Type) *Convert {
	return &Convert{node: newNode(), Operand: operand, typ: t}
}

func (e *Convert) Kind() Kind         { return KindConvert }
func (e *Convert) Type() reflect.Type { return e.typ }

// Lambda is the root form handed to the reducer: formals plus a body.
type Lambda struct {
	node
	Params []*Param
	Body   Expr
}

// NewLambda builds a lambda.
func NewLambda(body Expr, params ...*Param) *Lambda {
	return &Lambda{node: newNode(), Params: params, Body: body}
}

func (e *Lambda) Kind() Kind         { return KindLambda }
func (e *Lambda) Type() reflect.Type { return e.Body.Type() }

// Scoped evaluates Resource, runs Body, and releases the resource's close
// capability on every exit path, including panics. With Probe set the
// capability is only discovered at run time via a checked cast.
type Scoped struct {
	node
	Resource Expr
	Body     Expr
	Probe    bool
}

// NewScoped builds a close-scoped region.
func NewScoped(resource, body Expr, probe bool) *Scoped {
	return &Scoped{node: newNode(), Resource: resource, Body: body, Probe: probe}
}

func (e *Scoped) Kind() Kind         { return KindScoped }
func (e *Scoped) Type() reflect.Type { return e.Body.Type() }

// Nilable reports whether t admits nil, and therefore whether a chain link
// of this type needs a runtime guard.
func Nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
