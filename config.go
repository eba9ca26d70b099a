// Package remap is a reflection-driven object mapper: declare how one type
// maps onto another, and the engine compiles the declaration into an
// executable plan it reuses for every conversion of that type pair.
package remap

import (
	"errors"
	"fmt"
	"reflect"

	"remap/internal/mapping"
)

var (
	ErrUnknownTypeName = errors.New("type name is not registered")
	ErrDuplicateMap    = errors.New("type pair is already mapped")
	ErrUnknownMember   = errors.New("destination member does not exist")
)

// Config collects type maps, profile options, registered type names, and
// read-only collection constructors before a Mapper is built from it.
type Config struct {
	typeMaps map[mapping.TypePair]*mapping.TypeMap
	profile  mapping.Profile
	ctors    *mapping.CtorRegistry
	names    map[string]reflect.Type
}

// NewConfig creates an empty configuration.
func NewConfig() *Config {
	return &Config{
		typeMaps: make(map[mapping.TypePair]*mapping.TypeMap),
		ctors:    mapping.NewCtorRegistry(),
		names:    make(map[string]reflect.Type),
	}
}

// MemberDef declares one destination member override.
type MemberDef struct {
	// Target is the destination member name.
	Target string

	// Source is a dotted path on the source type ("Address.City"); empty
	// means same-name lookup.
	Source string

	// UseDestinationValue mutates the existing destination value in place.
	UseDestinationValue bool

	// CanBeSet marks the destination member settable; nil defaults to true.
	CanBeSet *bool

	// Ignore skips the member.
	Ignore bool

	// NilSubstitute is assigned instead of the zero value when the source
	// chain has a nil link.
	NilSubstitute any
}

// MapOption customizes one type map declaration.
type MapOption func(*mapSpec)

type mapSpec struct {
	maxDepth     int
	checkContext bool
	members      []MemberDef
}

// MaxDepth bounds recursion for self-referential graphs mapped through
// this pair.
func MaxDepth(n int) MapOption {
	return func(s *mapSpec) { s.maxDepth = n }
}

// CheckContext requests the recursion-context pre-check before collection
// refills through this pair.
func CheckContext() MapOption {
	return func(s *mapSpec) { s.checkContext = true }
}

// Member declares a per-destination-member override.
func Member(def MemberDef) MapOption {
	return func(s *mapSpec) { s.members = append(s.members, def) }
}

// AllowNilCollections makes nil source collections map to nil destinations
// instead of empty ones.
func (c *Config) AllowNilCollections(allow bool) { c.profile.AllowNilCollections = allow }

// RegisterTypeName makes a type addressable from YAML profiles.
func (c *Config) RegisterTypeName(name string, t reflect.Type) { c.names[name] = t }

// RegisterReadOnlyCtor registers the single-argument constructor of a
// read-only collection type, keyed by its result type.
func (c *Config) RegisterReadOnlyCtor(ctor any) error { return c.ctors.Register(ctor) }

// CreateMap declares a type pair mapping. Declaring the same pair twice is
// a configuration error.
func (c *Config) CreateMap(src, dst reflect.Type, opts ...MapOption) error {
	pair := mapping.TypePair{Src: src, Dst: dst}
	if _, exists := c.typeMaps[pair]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMap, pair)
	}

	var spec mapSpec
	for _, opt := range opts {
		opt(&spec)
	}

	tm := &mapping.TypeMap{
		Pair:             pair,
		MaxDepth:         spec.maxDepth,
		MustCheckContext: spec.checkContext,
	}

	for _, def := range spec.members {
		if err := checkMemberTarget(dst, def.Target); err != nil {
			return fmt.Errorf("map %s: %w", pair, err)
		}

		mm, err := memberFromDef(tm, src, def)
		if err != nil {
			return fmt.Errorf("map %s: %w", pair, err)
		}

		tm.Members = append(tm.Members, mm)
	}

	c.typeMaps[pair] = tm

	return nil
}

// checkMemberTarget rejects member overrides naming no exported field on
// the destination type; silently dropping them would mask typos.
func checkMemberTarget(dst reflect.Type, target string) error {
	base := dst
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}

	if base.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %q on %s", ErrUnknownMember, target, dst)
	}

	if f, ok := base.FieldByName(target); !ok || f.PkgPath != "" {
		return fmt.Errorf("%w: %q on %s", ErrUnknownMember, target, dst)
	}

	return nil
}

func memberFromDef(tm *mapping.TypeMap, src reflect.Type, def MemberDef) (*mapping.MemberMap, error) {
	mm := &mapping.MemberMap{
		Name:                def.Target,
		UseDestinationValue: def.UseDestinationValue,
		CanBeSet:            def.CanBeSet == nil || *def.CanBeSet,
		Ignore:              def.Ignore,
		NilSubstitute:       def.NilSubstitute,
		TypeMap:             tm,
	}

	if def.Source != "" {
		path, err := mapping.PathLambda(src, def.Source)
		if err != nil {
			return nil, err
		}

		mm.Path = path
	}

	return mm, nil
}

// ResolveTypeMap implements the provider contract the collection compiler
// resolves nested element mappings through.
func (c *Config) ResolveTypeMap(src, dst reflect.Type) *mapping.TypeMap {
	return c.typeMaps[mapping.TypePair{Src: src, Dst: dst}]
}

func (c *Config) allMaps() []*mapping.TypeMap {
	maps := make([]*mapping.TypeMap, 0, len(c.typeMaps))
	for _, tm := range c.typeMaps {
		maps = append(maps, tm)
	}

	return maps
}
