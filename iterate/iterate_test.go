package iterate_test

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remap/iterate"
)

func ExampleNew() {
	it, _ := iterate.New(reflect.ValueOf([]string{"a", "b", "c"}))
	for it.Next() {
		fmt.Print(it.Value().Interface(), " ")
	}

	fmt.Println()
	// Output:
	// a b c
}

func TestNew_Slice(t *testing.T) {
	it, err := iterate.New(reflect.ValueOf([]int{1, 2, 3}))
	require.NoError(t, err)

	var got []int
	for it.Next() {
		got = append(got, int(it.Value().Int()))
	}

	assert.Equal(t, []int{1, 2, 3}, got)
	assert.False(t, it.Next())
}

func TestNew_Array(t *testing.T) {
	it, err := iterate.New(reflect.ValueOf([2]string{"x", "y"}))
	require.NoError(t, err)

	require.True(t, it.Next())
	assert.Equal(t, "x", it.Value().String())
	require.True(t, it.Next())
	assert.Equal(t, "y", it.Value().String())
	assert.False(t, it.Next())
}

func TestNew_Map(t *testing.T) {
	src := map[string]int{"a": 1, "b": 2, "c": 3}

	it, err := iterate.New(reflect.ValueOf(src))
	require.NoError(t, err)

	var got []int
	for it.Next() {
		got = append(got, int(it.Value().Int()))
	}

	sort.Ints(got)
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestNew_Chan(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 10
	ch <- 20
	close(ch)

	it, err := iterate.New(reflect.ValueOf(ch))
	require.NoError(t, err)

	var got []int
	for it.Next() {
		got = append(got, int(it.Value().Int()))
	}

	assert.Equal(t, []int{10, 20}, got)
}

func TestNew_NilAndPointers(t *testing.T) {
	var null *[]int
	it, err := iterate.New(reflect.ValueOf(null))
	require.NoError(t, err)
	assert.False(t, it.Next())

	s := []int{7}
	it, err = iterate.New(reflect.ValueOf(&s))
	require.NoError(t, err)
	require.True(t, it.Next())
	assert.Equal(t, int64(7), it.Value().Int())

	it, err = iterate.New(reflect.Value{})
	require.NoError(t, err)
	assert.False(t, it.Next())
}

func TestNew_NotIterable(t *testing.T) {
	_, err := iterate.New(reflect.ValueOf(42))
	assert.ErrorIs(t, err, iterate.ErrNotIterable)

	assert.Panics(t, func() { iterate.MustNew(reflect.ValueOf(42)) })
}

type countdown struct{ n int }

func (c *countdown) Elements() iterate.Iterator { return &countdownIter{n: c.n} }

type countdownIter struct{ n, cur int }

func (it *countdownIter) Next() bool {
	if it.cur >= it.n {
		return false
	}

	it.cur++

	return true
}

func (it *countdownIter) Value() reflect.Value { return reflect.ValueOf(it.n - it.cur) }

func TestNew_Enumerable(t *testing.T) {
	it, err := iterate.New(reflect.ValueOf(&countdown{n: 3}))
	require.NoError(t, err)

	var got []int
	for it.Next() {
		got = append(got, int(it.Value().Int()))
	}

	assert.Equal(t, []int{2, 1, 0}, got)
}

func TestClosing(t *testing.T) {
	released := 0
	it := iterate.Closing(iterate.MustNew(reflect.ValueOf([]int{1})), func() error {
		released++
		return nil
	})

	require.True(t, it.Next())
	assert.Equal(t, int64(1), it.Value().Int())
	assert.False(t, it.Next())

	closer, ok := it.(interface{ Close() error })
	require.True(t, ok)
	require.NoError(t, closer.Close())
	assert.Equal(t, 1, released)
}

func TestClosing_ReleaseError(t *testing.T) {
	boom := errors.New("boom")
	it := iterate.Closing(iterate.MustNew(reflect.ValueOf([]int{})), func() error { return boom })

	closer := it.(interface{ Close() error })
	assert.ErrorIs(t, closer.Close(), boom)
}
