package remap

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"remap/internal/mapping"
	"remap/internal/plan"
)

var (
	ErrNotPointer = errors.New("destination must be a non-nil pointer")
	ErrNoTypeMap  = errors.New("no type map declared for pair")
)

// Mapper executes compiled mapping plans. It is safe for concurrent use:
// plan construction is pure, and the pair cache is write-once per key.
// Two goroutines racing on the same cold pair both build, one result is
// kept.
type Mapper struct {
	cfg   *Config
	plans sync.Map // mapping.TypePair -> *mapping.TypeMap
}

// New builds a Mapper, compiling plans for every declared type pair and
// every nested pair those pull in.
func New(cfg *Config) (*Mapper, error) {
	builder := plan.NewBuilder(cfg, &cfg.profile, cfg.ctors)
	if err := builder.Build(cfg.allMaps()...); err != nil {
		return nil, err
	}

	return &Mapper{cfg: cfg}, nil
}

// Map converts src onto the value dst points at, using the plan declared
// for the (source type, destination type) pair.
func (m *Mapper) Map(src, dst any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("map: %v", r)
		}
	}()

	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return ErrNotPointer
	}

	pair := mapping.TypePair{Src: reflect.TypeOf(src), Dst: dv.Elem().Type()}

	tm, err := m.lookup(pair)
	if err != nil {
		return err
	}

	out := tm.Invoke(reflect.ValueOf(src), dv.Elem(), mapping.NewContext())
	dv.Elem().Set(out)

	return nil
}

// MapTo is the allocating form of Map.
func MapTo[D any](m *Mapper, src any) (D, error) {
	var dst D
	err := m.Map(src, &dst)

	return dst, err
}

func (m *Mapper) lookup(pair mapping.TypePair) (*mapping.TypeMap, error) {
	if cached, ok := m.plans.Load(pair); ok {
		return cached.(*mapping.TypeMap), nil
	}

	tm := m.cfg.ResolveTypeMap(pair.Src, pair.Dst)
	if tm == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTypeMap, pair)
	}

	cached, _ := m.plans.LoadOrStore(pair, tm)

	return cached.(*mapping.TypeMap), nil
}
