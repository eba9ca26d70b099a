// Package mapping holds the configuration records the compiler consumes:
// type pairs, type maps, per-member maps, profile options, and the provider
// contract used to discover nested element mappings. The compiler reads
// these records and never mutates them.
package mapping

import (
	"fmt"
	"reflect"

	"remap/internal/ir"
)

// TypePair identifies one conversion and keys plan caches and nested
// mapping resolution.
type TypePair struct{ Src, Dst reflect.Type }

// String returns "Src->Dst" for diagnostics.
func (p TypePair) String() string { return fmt.Sprintf("%s->%s", p.Src, p.Dst) }

// MapFunc is a reduced whole-object plan: maps src onto dst (which may be
// the zero value) and returns the resulting destination value.
type MapFunc func(src, dst reflect.Value, ctx *Context) reflect.Value

// TypeMap is the per-type-pair configuration plus, once built, the reduced
// plan for the pair.
type TypeMap struct {
	Pair TypePair

	// MaxDepth bounds recursion on self-referential graphs; zero means
	// unbounded.
	MaxDepth int

	// MustCheckContext requests the pre-check step before any collection
	// refill that maps through this type map.
	MustCheckContext bool

	Members []*MemberMap

	fn MapFunc
}

// SetFunc installs the reduced plan. The builder calls it exactly once,
// before the type map is ever invoked.
func (tm *TypeMap) SetFunc(fn MapFunc) { tm.fn = fn }

// Invoke runs the reduced plan for one element, tracking recursion depth in
// ctx. It panics when no plan was installed; that is a wiring defect, not a
// runtime condition.
func (tm *TypeMap) Invoke(src, dst reflect.Value, ctx *Context) reflect.Value {
	if tm.fn == nil {
		panic(fmt.Sprintf("mapping: type map %s invoked before its plan was built", tm.Pair))
	}

	ctx.push(tm.Pair)
	defer ctx.pop(tm.Pair)

	return tm.fn(src, dst, ctx)
}

// Member returns the member map for a destination member name, or nil.
func (tm *TypeMap) Member(name string) *MemberMap {
	for _, m := range tm.Members {
		if m.Name == name {
			return m
		}
	}

	return nil
}

// MemberMap is the per-destination-member configuration.
type MemberMap struct {
	// Name of the destination member.
	Name string

	// Path overrides the source member path; nil means same-name lookup.
	Path *ir.Lambda

	// UseDestinationValue mutates the passed-in destination value in place
	// instead of replacing it.
	UseDestinationValue bool

	// CanBeSet reports whether the destination member is settable; it gates
	// the replace-on-read-only decision.
	CanBeSet bool

	// Ignore skips the member entirely.
	Ignore bool

	// NilSubstitute is assigned instead of the zero value when the source
	// chain has a nil link; nil means no substitution.
	NilSubstitute any

	// TypeMap is the owning type map, consulted for recursion-depth checks.
	TypeMap *TypeMap
}

// GetPath returns the configured source path lambda; safe on a nil member
// map.
func (m *MemberMap) GetPath() *ir.Lambda {
	if m == nil {
		return nil
	}

	return m.Path
}

// Profile carries cross-cutting options passed through the compiler
// unchanged.
type Profile struct {
	// AllowNilCollections leaves a destination collection nil when the
	// source collection is nil, instead of producing an empty one.
	AllowNilCollections bool
}

// Provider resolves nested type maps for element type pairs. The collection
// compiler is its only consumer inside the core.
type Provider interface {
	ResolveTypeMap(src, dst reflect.Type) *TypeMap
}

// ReadOnlyReporter is implemented by custom collections that can refuse
// in-place population; a read-only report on a settable member switches the
// plan to a fresh instance.
type ReadOnlyReporter interface {
	ReadOnly() bool
}
