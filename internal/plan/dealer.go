package plan

import (
	"reflect"

	"remap/internal/mapping"
)

// Dealer is the type-pair worklist the builder drains: pairs discovered
// while assembling one plan queue follow-up builds, and every pair is
// dealt at most once.
type Dealer struct {
	needs map[mapping.TypePair]struct{}
	done  map[mapping.TypePair]struct{}
}

// NextNeeds pops an undealt pair, marking it done.
func (d *Dealer) NextNeeds() (src, dst reflect.Type, ok bool) {
	if len(d.needs) == 0 {
		return
	}

	for pair := range d.needs {
		delete(d.needs, pair)

		if _, exists := d.done[pair]; !exists {
			d.Done(pair.Src, pair.Dst)

			return pair.Src, pair.Dst, true
		}
	}

	return
}

// Needs queues a pair unless it was already dealt.
func (d *Dealer) Needs(src, dst reflect.Type) {
	if d.needs == nil {
		d.needs = make(map[mapping.TypePair]struct{})
	}

	pair := mapping.TypePair{Src: src, Dst: dst}
	if _, exists := d.done[pair]; !exists {
		d.needs[pair] = struct{}{}
	}
}

// Done marks a pair dealt, removing any pending queue entry.
func (d *Dealer) Done(src, dst reflect.Type) {
	if d.done == nil {
		d.done = make(map[mapping.TypePair]struct{})
	}

	pair := mapping.TypePair{Src: src, Dst: dst}
	delete(d.needs, pair)
	d.done[pair] = struct{}{}
}
