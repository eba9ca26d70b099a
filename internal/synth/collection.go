// Package synth composes the expression-tree primitives into the guarded
// and looping forms whole-object plans are assembled from: null
// propagation, element loops, close-scoped regions, and collection
// refills.
package synth

import (
	"errors"
	"fmt"
	"reflect"

	"remap/internal/ir"
	"remap/internal/mapping"
)

var ErrUnsupportedCollection = errors.New("unsupported destination collection shape")

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Request bundles the collaborators a collection mapping needs: the nested
// type map resolver, profile options, the destination member's
// configuration, the read-only constructor registry, and the expression
// referring to the runtime context parameter.
type Request struct {
	Provider mapping.Provider
	Profile  *mapping.Profile
	Member   *mapping.MemberMap
	Ctors    *mapping.CtorRegistry
	Ctx      ir.Expr
}

type shape int

const (
	shapeSlice shape = iota
	shapeCustom
	shapeUntyped
)

// MapCollection builds the expression computing the destination collection
// value for one member: decide the destination shape, decide reuse versus
// fresh construction, clear, then refill element by element through the
// nested type-pair conversion.
//
// The refill never runs without the clear step preceding it, so a reused
// destination keeps no leftover elements. When the owning type map bounds
// recursion depth, the whole refill is replaced by a no-op once the bound
// is exceeded at run time; the clear still applies, leaving deeper
// collections empty instead of recursing.
//
// The source expression is evaluated exactly once, into a temporary the
// loop reads from; accessors on the source path run once per mapping, not
// once per element.
func MapCollection(req Request, src, dest ir.Expr, destType reflect.Type) (ir.Expr, error) {
	sh, destType, dest, dstElem, err := resolveShape(dest, destType)
	if err != nil {
		return nil, err
	}

	srcElem := elementType(src.Type())
	source := ir.NewVar("source", src.Type())
	work := ir.NewVar("work", destType)

	list := []ir.Expr{
		ir.NewAssign(work, initialValue(req, sh, dest, destType)),
		clearStep(sh, work, destType),
	}

	elemTM := resolveElementMap(req, srcElem, dstElem)
	if elemTM != nil && elemTM.MustCheckContext {
		list = append(list, ir.NewCall(fnCheckContext, nil, req.Ctx, ir.NewConst(elemTM)))
	}

	item := ir.NewVar("item", srcElem)
	refill := ForEach(source, item, addStep(sh, work, destType, mappedElement(req, elemTM, item, dstElem)))

	if owner := ownerTypeMap(req); owner != nil && owner.MaxDepth > 0 {
		over := ir.NewCall(fnOverMaxDepth, nil, req.Ctx, ir.NewConst(owner))
		refill = ir.NewCond(over, ir.Zero(ir.Void), refill)
	}

	list = append(list, refill, work)
	body := ir.Expr(ir.NewBlock(nil, list...))

	// A nil source yields a nil destination when the profile asks for it;
	// otherwise it naturally refills to empty.
	if req.Profile != nil && req.Profile.AllowNilCollections &&
		ir.Nilable(source.Type()) && !useDestination(req) {
		body = ir.NewCond(
			ir.NewEqual(source, ir.Zero(source.Type())),
			ir.Zero(destType),
			body,
		)
	}

	return ir.NewBlock([]*ir.Var{source, work},
		ir.NewAssign(source, src),
		body,
	), nil
}

// MapReadOnlyCollection builds a collection mapping against the mutable
// form consumed by the read-only type's registered single-argument
// constructor, then wraps the result in that constructor call. A read-only
// destination without a registered constructor is a configuration error.
func MapReadOnlyCollection(req Request, src ir.Expr, readonly reflect.Type) (ir.Expr, error) {
	if req.Ctors == nil {
		return nil, fmt.Errorf("%w: %s", mapping.ErrNoReadOnlyCtor, readonly)
	}

	ctor, err := req.Ctors.Lookup(readonly)
	if err != nil {
		return nil, err
	}

	mut := ctor.Type().In(0)

	// The wrapped mutable collection is always freshly built; a read-only
	// destination has nothing reusable.
	inner, err := MapCollection(req, src, ir.Zero(mut), mut)
	if err != nil {
		return nil, err
	}

	mem, err := ir.FuncOf("new"+readonly.Name(), ctor.Interface())
	if err != nil {
		return nil, err
	}

	return ir.NewCall(mem, nil, inner), nil
}

// IsCollectionType reports whether t is a destination shape the collection
// compiler can populate directly: a slice or a custom collection contract.
func IsCollectionType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice:
		return true

	case reflect.Ptr:
		add, okAdd := t.MethodByName("Add")
		_, okClear := t.MethodByName("Clear")

		return t.Elem().Kind() == reflect.Struct && okAdd && okClear && add.Type.NumIn() == 2

	default:
		return false
	}
}

// FreshInstance is the construct-on-nil expression for a destination type:
// a new allocation for pointers, the zero value otherwise.
func FreshInstance(t reflect.Type) ir.Expr {
	if t.Kind() == reflect.Ptr {
		return ir.NewConvert(ir.NewCall(fnInstantiate, nil, ir.NewConst(t)), t)
	}

	return ir.Zero(t)
}

// resolveShape classifies the destination: slice, custom collection
// (pointer to struct exposing Add and Clear), or the untyped list fallback
// for interface destinations with no recognizable contract, retargeting
// the destination expression accordingly.
func resolveShape(dest ir.Expr, destType reflect.Type) (shape, reflect.Type, ir.Expr, reflect.Type, error) {
	switch destType.Kind() {
	case reflect.Slice:
		return shapeSlice, destType, retype(dest, destType), destType.Elem(), nil

	case reflect.Ptr:
		add, okAdd := destType.MethodByName("Add")
		_, okClear := destType.MethodByName("Clear")

		if destType.Elem().Kind() == reflect.Struct && okAdd && okClear && add.Type.NumIn() == 2 {
			return shapeCustom, destType, retype(dest, destType), add.Type.In(1), nil
		}

		return 0, nil, nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedCollection, destType)

	case reflect.Interface:
		untyped := reflect.TypeOf([]any{})
		return shapeUntyped, untyped, retype(dest, untyped), anyType, nil

	default:
		return 0, nil, nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedCollection, destType)
	}
}

// initialValue is the destination strategy: in-place reuse when the member
// asks for it, otherwise a runtime choice between the passed-in value and
// a fresh instance (nil destination, or settable member whose destination
// reports itself read-only).
func initialValue(req Request, sh shape, dest ir.Expr, destType reflect.Type) ir.Expr {
	if useDestination(req) {
		return dest
	}

	replace := nilTest(dest)

	if sh == shapeCustom && req.Member != nil && req.Member.CanBeSet {
		replace = ir.OrElse(replace, ir.NewCall(fnIsReadOnly, nil, dest))
	}

	return ir.NewCond(replace, fresh(sh, destType), dest)
}

func fresh(sh shape, destType reflect.Type) ir.Expr {
	if sh == shapeCustom {
		return ir.NewConvert(ir.NewCall(fnInstantiate, nil, ir.NewConst(destType)), destType)
	}

	// A nil slice is a valid empty destination; push grows it.
	return ir.Zero(destType)
}

func clearStep(sh shape, work *ir.Var, destType reflect.Type) ir.Expr {
	if sh == shapeCustom {
		return ir.NewAssign(work, ir.NewConvert(ir.NewCall(fnClearAll, nil, work), destType))
	}

	return ir.NewAssign(work, ir.NewConvert(ir.NewCall(fnTruncate, nil, work), destType))
}

func addStep(sh shape, work *ir.Var, destType reflect.Type, mapped ir.Expr) ir.Expr {
	if sh == shapeCustom {
		return ir.NewCall(fnAdd, nil, work, mapped)
	}

	return ir.NewAssign(work, ir.NewConvert(ir.NewCall(fnPush, nil, work, mapped), destType))
}

// MappedValue routes a single (non-collection) value through a nested type
// map, yielding an expression of the destination type. The whole-object
// builder uses it for struct-typed members with their own type map. A
// depth-bounded map truncates to the destination zero value once the bound
// is reached, which is what stops self-referential graphs.
func MappedValue(req Request, tm *mapping.TypeMap, src ir.Expr, destType reflect.Type) ir.Expr {
	call := ir.NewCall(fnMapElement, nil, ir.NewConst(tm), src, req.Ctx)
	mapped := ir.Expr(ir.NewConvert(call, destType))

	if tm.MaxDepth > 0 {
		over := ir.NewCall(fnOverMaxDepth, nil, req.Ctx, ir.NewConst(tm))
		mapped = ir.NewCond(over, ir.Zero(destType), mapped)
	}

	return mapped
}

// mappedElement converts one source element: through the nested type map
// when one exists, by plain coercion otherwise.
func mappedElement(req Request, elemTM *mapping.TypeMap, item *ir.Var, dstElem reflect.Type) ir.Expr {
	if elemTM != nil {
		call := ir.NewCall(fnMapElement, nil, ir.NewConst(elemTM), item, req.Ctx)
		return ir.NewConvert(call, dstElem)
	}

	return retype(item, dstElem)
}

func resolveElementMap(req Request, srcElem, dstElem reflect.Type) *mapping.TypeMap {
	if req.Provider == nil {
		return nil
	}

	return req.Provider.ResolveTypeMap(srcElem, dstElem)
}

func ownerTypeMap(req Request) *mapping.TypeMap {
	if req.Member == nil {
		return nil
	}

	return req.Member.TypeMap
}

func useDestination(req Request) bool {
	return req.Member != nil && req.Member.UseDestinationValue
}

func nilTest(e ir.Expr) ir.Expr {
	if !ir.Nilable(e.Type()) {
		return ir.NewConst(false)
	}

	return ir.NewEqual(e, ir.Zero(e.Type()))
}

func elementType(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return t.Elem()
	case reflect.Ptr:
		return elementType(t.Elem())
	default:
		return anyType
	}
}
