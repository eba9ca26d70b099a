// Package plan assembles whole-object mapping plans: per destination
// member it resolves the source chain, guards it against nil links, routes
// collection members through the collection compiler, and reduces the
// finished tree to the closure the engine invokes per object.
package plan

import (
	"fmt"
	"reflect"

	"remap/internal/chain"
	"remap/internal/compile"
	"remap/internal/ir"
	"remap/internal/mapping"
	"remap/internal/rewrite"
	"remap/internal/synth"
)

var ctxType = reflect.TypeOf((*mapping.Context)(nil))

// Builder compiles type maps into executable plans, draining the pair
// worklist so every nested pair discovered along the way is built exactly
// once.
type Builder struct {
	provider mapping.Provider
	profile  *mapping.Profile
	ctors    *mapping.CtorRegistry
	dealer   Dealer
}

// NewBuilder wires a builder to its configuration provider, profile
// options, and read-only constructor registry.
func NewBuilder(provider mapping.Provider, profile *mapping.Profile, ctors *mapping.CtorRegistry) *Builder {
	return &Builder{provider: provider, profile: profile, ctors: ctors}
}

// Build compiles plans for the given type maps plus every nested pair they
// pull in. Building is pure per pair; rebuilding an already-built pair is
// harmless, so concurrent redundant builds need no coordination here.
func (b *Builder) Build(roots ...*mapping.TypeMap) error {
	for _, tm := range roots {
		b.dealer.Needs(tm.Pair.Src, tm.Pair.Dst)
	}

	for {
		src, dst, ok := b.dealer.NextNeeds()
		if !ok {
			return nil
		}

		tm := b.provider.ResolveTypeMap(src, dst)
		if tm == nil {
			continue
		}

		if err := b.buildOne(tm); err != nil {
			return fmt.Errorf("building plan %s: %w", tm.Pair, err)
		}
	}
}

// recording wraps the provider so every nested resolution also queues the
// pair for its own plan build.
type recording struct {
	inner  mapping.Provider
	dealer *Dealer
}

func (r recording) ResolveTypeMap(src, dst reflect.Type) *mapping.TypeMap {
	tm := r.inner.ResolveTypeMap(src, dst)
	if tm != nil {
		r.dealer.Needs(src, dst)
	}

	return tm
}

func (b *Builder) buildOne(tm *mapping.TypeMap) error {
	srcParam := ir.NewParam("src", tm.Pair.Src)
	dstParam := ir.NewParam("dst", tm.Pair.Dst)
	ctxParam := ir.NewParam("ctx", ctxType)

	body, err := b.planBody(tm, srcParam, dstParam, ctxParam)
	if err != nil {
		return err
	}

	fn := compile.Reduce(ir.NewLambda(body, srcParam, dstParam, ctxParam))

	tm.SetFunc(func(src, dst reflect.Value, ctx *mapping.Context) reflect.Value {
		out, err := fn(src, dst, reflect.ValueOf(ctx))
		if err != nil {
			panic(err)
		}

		return out
	})

	return nil
}

func (b *Builder) planBody(tm *mapping.TypeMap, srcParam, dstParam, ctxParam *ir.Param) (ir.Expr, error) {
	dstType := tm.Pair.Dst

	// Whole-type collection pairs reduce to a single collection mapping.
	if synth.IsCollectionType(dstType) || dstType.Kind() == reflect.Interface {
		return synth.MapCollection(b.request(nil, ctxParam), srcParam, dstParam, dstType)
	}

	base := dstType
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}

	out := ir.NewVar("out", dstType)
	list := []ir.Expr{ir.NewAssign(out, initialDest(dstParam, dstType))}

	if base.Kind() != reflect.Struct {
		// Scalar pair: a guarded conversion is the whole plan.
		list = append(list, ir.NewAssign(out, synth.NullGuard(srcParam, dstType)))
	} else {
		for i := 0; i < base.NumField(); i++ {
			f := base.Field(i)
			if f.PkgPath != "" {
				continue
			}

			mm := tm.Member(f.Name)
			if mm != nil && mm.Ignore {
				continue
			}

			step, err := b.memberStep(tm, mm, f, srcParam, out, ctxParam)
			if err != nil {
				return nil, fmt.Errorf("member %s: %w", f.Name, err)
			}

			if step != nil {
				list = append(list, step)
			}
		}
	}

	list = append(list, out)

	return ir.NewBlock([]*ir.Var{out}, list...), nil
}

// memberStep builds the assignment for one destination member, or nil when
// the member has no matching source.
func (b *Builder) memberStep(
	tm *mapping.TypeMap,
	mm *mapping.MemberMap,
	f reflect.StructField,
	srcParam *ir.Param,
	out *ir.Var,
	ctxParam *ir.Param,
) (ir.Expr, error) {
	l := mm.GetPath()
	if l == nil {
		var err error
		if l, err = mapping.PathLambda(tm.Pair.Src, f.Name); err != nil {
			// No same-name source member; leave the destination untouched.
			return nil, nil
		}
	}

	// Configuration-time validation: the path must be a pure member chain.
	if _, err := chain.EnsureMemberPath(l); err != nil {
		return nil, err
	}

	srcExpr := rewrite.TypedParameters(l, srcParam)
	destMem, err := ir.FieldOf(out.Type(), f.Name)
	if err != nil {
		return nil, err
	}

	dest := ir.NewMember(out, destMem)
	req := b.request(effectiveMember(mm, tm, f), ctxParam)

	switch {
	case b.ctors != nil && b.ctors.Has(f.Type):
		expr, err := synth.MapReadOnlyCollection(req, synth.NullGuard(srcExpr, nil), f.Type)
		if err != nil {
			return nil, err
		}

		return ir.NewAssign(dest, expr), nil

	case synth.IsCollectionType(f.Type):
		expr, err := synth.MapCollection(req, synth.NullGuard(srcExpr, nil), dest, f.Type)
		if err != nil {
			return nil, err
		}

		return ir.NewAssign(dest, expr), nil
	}

	if nested := req.Provider.ResolveTypeMap(srcExpr.Type(), f.Type); nested != nil {
		guarded := synth.NullGuard(srcExpr, nil)
		return ir.NewAssign(dest, synth.MappedValue(req, nested, guarded, f.Type)), nil
	}

	if mm != nil && mm.NilSubstitute != nil {
		guarded := synth.NullGuardElse(srcExpr, f.Type, ir.NewConst(mm.NilSubstitute))
		return ir.NewAssign(dest, guarded), nil
	}

	return ir.NewAssign(dest, synth.NullGuard(srcExpr, f.Type)), nil
}

func (b *Builder) request(mm *mapping.MemberMap, ctxParam *ir.Param) synth.Request {
	return synth.Request{
		Provider: recording{inner: b.provider, dealer: &b.dealer},
		Profile:  b.profile,
		Member:   mm,
		Ctors:    b.ctors,
		Ctx:      ctxParam,
	}
}

// effectiveMember fills in the defaults for an unconfigured member without
// mutating the caller's records.
func effectiveMember(mm *mapping.MemberMap, tm *mapping.TypeMap, f reflect.StructField) *mapping.MemberMap {
	if mm == nil {
		return &mapping.MemberMap{Name: f.Name, CanBeSet: true, TypeMap: tm}
	}

	cp := *mm
	if cp.TypeMap == nil {
		cp.TypeMap = tm
	}

	return &cp
}

func initialDest(dst ir.Expr, dstType reflect.Type) ir.Expr {
	if !ir.Nilable(dstType) {
		return dst
	}

	return ir.NewCond(
		ir.NewEqual(dst, ir.Zero(dstType)),
		synth.FreshInstance(dstType),
		dst,
	)
}
