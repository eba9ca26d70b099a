package plan_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remap/internal/chain"
	"remap/internal/ir"
	"remap/internal/mapping"
	"remap/internal/plan"
)

type registry map[mapping.TypePair]*mapping.TypeMap

func (r registry) ResolveTypeMap(src, dst reflect.Type) *mapping.TypeMap {
	return r[mapping.TypePair{Src: src, Dst: dst}]
}

func (r registry) add(tm *mapping.TypeMap) *mapping.TypeMap {
	r[tm.Pair] = tm
	return tm
}

func typeMapFor[S, D any](r registry) *mapping.TypeMap {
	return r.add(&mapping.TypeMap{Pair: mapping.TypePair{
		Src: reflect.TypeFor[S](), Dst: reflect.TypeFor[D](),
	}})
}

func build(t *testing.T, r registry, roots ...*mapping.TypeMap) {
	t.Helper()

	b := plan.NewBuilder(r, &mapping.Profile{}, mapping.NewCtorRegistry())
	require.NoError(t, b.Build(roots...))
}

type ticket struct {
	ID      int64
	Title   string
	Urgency ticketUrgency
	Labels  []string
}

type ticketUrgency string

type ticketRecord struct {
	ID      int64
	Title   string
	Urgency string
	Labels  []string
	Notes   string
}

func TestBuild_SameNameMembers(t *testing.T) {
	r := registry{}
	tm := typeMapFor[ticket, ticketRecord](r)
	build(t, r, tm)

	src := ticket{ID: 7, Title: "leak", Urgency: "high", Labels: []string{"infra", "mem"}}
	out := tm.Invoke(reflect.ValueOf(src), reflect.Zero(reflect.TypeFor[ticketRecord]()), mapping.NewContext())

	got := out.Interface().(ticketRecord)
	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "leak", got.Title)
	assert.Equal(t, "high", got.Urgency, "convertible types pass through a cast")
	assert.Equal(t, []string{"infra", "mem"}, got.Labels)
	assert.Equal(t, "", got.Notes, "a member without a source stays untouched")
}

func TestBuild_PreservesUnmappedDestinationState(t *testing.T) {
	r := registry{}
	tm := typeMapFor[ticket, ticketRecord](r)
	build(t, r, tm)

	dst := ticketRecord{Notes: "keep me"}
	out := tm.Invoke(reflect.ValueOf(ticket{ID: 1}), reflect.ValueOf(dst), mapping.NewContext())

	assert.Equal(t, "keep me", out.Interface().(ticketRecord).Notes)
}

func TestBuild_ScalarPair(t *testing.T) {
	r := registry{}
	tm := typeMapFor[int, int64](r)
	build(t, r, tm)

	out := tm.Invoke(reflect.ValueOf(5), reflect.Zero(reflect.TypeFor[int64]()), mapping.NewContext())
	assert.Equal(t, int64(5), out.Interface())
}

func TestBuild_PointerDestinationAllocates(t *testing.T) {
	r := registry{}
	tm := typeMapFor[ticket, *ticketRecord](r)
	build(t, r, tm)

	out := tm.Invoke(reflect.ValueOf(ticket{Title: "x"}), reflect.Zero(reflect.TypeFor[*ticketRecord]()), mapping.NewContext())

	got := out.Interface().(*ticketRecord)
	require.NotNil(t, got)
	assert.Equal(t, "x", got.Title)
}

type board struct {
	Name    string
	Tickets []ticket
}

type boardRecord struct {
	Name    string
	Tickets []ticketRecord
}

func TestBuild_NestedCollectionPairsAreBuiltToo(t *testing.T) {
	r := registry{}
	elem := typeMapFor[ticket, ticketRecord](r)
	root := typeMapFor[board, boardRecord](r)

	// Only the root is handed over; the element pair is discovered while
	// assembling the refill and built from the worklist.
	build(t, r, root)

	src := board{Name: "ops", Tickets: []ticket{{Title: "a"}, {Title: "b"}}}
	out := root.Invoke(reflect.ValueOf(src), reflect.Zero(reflect.TypeFor[boardRecord]()), mapping.NewContext())

	got := out.Interface().(boardRecord)
	assert.Equal(t, "ops", got.Name)
	require.Len(t, got.Tickets, 2)
	assert.Equal(t, "a", got.Tickets[0].Title)

	// The discovered pair carries its own invocable plan now.
	single := elem.Invoke(reflect.ValueOf(ticket{Title: "solo"}), reflect.Zero(reflect.TypeFor[ticketRecord]()), mapping.NewContext())
	assert.Equal(t, "solo", single.Interface().(ticketRecord).Title)
}

type desk struct {
	Owner *ticket
}

type deskRecord struct {
	Owner ticketRecord
}

func TestBuild_NestedSingleValue(t *testing.T) {
	r := registry{}
	typeMapFor[*ticket, ticketRecord](r)
	root := typeMapFor[desk, deskRecord](r)
	build(t, r, root)

	out := root.Invoke(reflect.ValueOf(desk{Owner: &ticket{Title: "mine"}}), reflect.Zero(reflect.TypeFor[deskRecord]()), mapping.NewContext())
	assert.Equal(t, "mine", out.Interface().(deskRecord).Owner.Title)

	// A nil nested source maps to the zero record.
	out = root.Invoke(reflect.ValueOf(desk{}), reflect.Zero(reflect.TypeFor[deskRecord]()), mapping.NewContext())
	assert.Equal(t, ticketRecord{}, out.Interface().(deskRecord).Owner)
}

func TestBuild_MemberOverrides(t *testing.T) {
	r := registry{}
	tm := typeMapFor[ticket, ticketRecord](r)

	path, err := mapping.PathLambda(reflect.TypeFor[ticket](), "Title")
	require.NoError(t, err)

	tm.Members = []*mapping.MemberMap{
		{Name: "Notes", Path: path, CanBeSet: true},
		{Name: "Urgency", Ignore: true},
	}

	build(t, r, tm)

	out := tm.Invoke(reflect.ValueOf(ticket{Title: "t", Urgency: "high"}), reflect.Zero(reflect.TypeFor[ticketRecord]()), mapping.NewContext())
	got := out.Interface().(ticketRecord)

	assert.Equal(t, "t", got.Notes, "redirected source path")
	assert.Equal(t, "", got.Urgency, "ignored member is skipped")
}

func TestBuild_RejectsNonPathMember(t *testing.T) {
	r := registry{}
	tm := typeMapFor[ticket, ticketRecord](r)

	p := ir.NewParam("t", reflect.TypeFor[ticket]())
	tm.Members = []*mapping.MemberMap{{
		Name:     "Notes",
		Path:     ir.NewLambda(ir.NewEqual(p, p), p),
		CanBeSet: true,
	}}

	b := plan.NewBuilder(r, &mapping.Profile{}, mapping.NewCtorRegistry())
	err := b.Build(tm)

	require.ErrorIs(t, err, chain.ErrNotMemberPath)
	assert.Contains(t, err.Error(), "Notes")
	assert.Contains(t, err.Error(), tm.Pair.String())
}

func TestBuild_UnresolvedRootsAreSkipped(t *testing.T) {
	r := registry{}
	orphan := &mapping.TypeMap{Pair: mapping.TypePair{
		Src: reflect.TypeFor[int](), Dst: reflect.TypeFor[string](),
	}}

	// Not registered with the provider, so the worklist discards it.
	b := plan.NewBuilder(r, &mapping.Profile{}, mapping.NewCtorRegistry())
	assert.NoError(t, b.Build(orphan))
}
