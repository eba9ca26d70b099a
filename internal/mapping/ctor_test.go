package mapping_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remap/internal/mapping"
)

type sealedTags struct {
	tags []string
}

func newSealedTags(tags []string) sealedTags {
	return sealedTags{tags: append([]string(nil), tags...)}
}

func TestCtorRegistry(t *testing.T) {
	reg := mapping.NewCtorRegistry()
	require.NoError(t, reg.Register(newSealedTags))

	sealed := reflect.TypeFor[sealedTags]()
	assert.True(t, reg.Has(sealed))
	assert.False(t, reg.Has(reflect.TypeFor[int]()))

	ctor, err := reg.Lookup(sealed)
	require.NoError(t, err)
	out := ctor.Call([]reflect.Value{reflect.ValueOf([]string{"a"})})
	assert.Equal(t, sealedTags{tags: []string{"a"}}, out[0].Interface())

	mut, err := reg.MutableFor(sealed)
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeFor[[]string](), mut)
}

func TestCtorRegistry_LookupMiss(t *testing.T) {
	reg := mapping.NewCtorRegistry()

	_, err := reg.Lookup(reflect.TypeFor[sealedTags]())
	assert.ErrorIs(t, err, mapping.ErrNoReadOnlyCtor)

	_, err = reg.MutableFor(reflect.TypeFor[sealedTags]())
	assert.ErrorIs(t, err, mapping.ErrNoReadOnlyCtor)
}

func TestCtorRegistry_RejectsBadConstructors(t *testing.T) {
	reg := mapping.NewCtorRegistry()

	assert.ErrorIs(t, reg.Register(42), mapping.ErrBadReadOnlyCtor)
	assert.ErrorIs(t, reg.Register(func() sealedTags { return sealedTags{} }), mapping.ErrBadReadOnlyCtor)
	assert.ErrorIs(t, reg.Register(func(a, b []string) sealedTags { return sealedTags{} }), mapping.ErrBadReadOnlyCtor)
	assert.ErrorIs(t, reg.Register(func(tags []string) (sealedTags, error) { return sealedTags{}, nil }), mapping.ErrBadReadOnlyCtor)
}
