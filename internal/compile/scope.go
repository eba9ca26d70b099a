package compile

import (
	"fmt"
	"reflect"

	"remap/internal/ir"
)

// scope is one frame of bindings, keyed by the node identifier of the Param
// or Var it binds. Frames chain outward; assignment updates the frame that
// declared the variable.
type scope struct {
	parent *scope
	slots  map[ir.NodeID]reflect.Value
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, slots: make(map[ir.NodeID]reflect.Value)}
}

func (s *scope) lookup(id ir.NodeID) (reflect.Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.slots[id]; ok {
			return v, true
		}
	}

	return reflect.Value{}, false
}

// bind declares a fresh addressable slot in this frame, so field writes
// through the variable mutate the stored value rather than a copy.
func (s *scope) bind(id ir.NodeID, t reflect.Type, v reflect.Value) {
	slot := reflect.New(t).Elem()
	if v.IsValid() {
		slot.Set(v)
	}

	s.slots[id] = slot
}

func (s *scope) set(id ir.NodeID, v reflect.Value) {
	for cur := s; cur != nil; cur = cur.parent {
		if slot, ok := cur.slots[id]; ok {
			slot.Set(v)
			return
		}
	}

	panic(fmt.Sprintf("compile: assignment to undeclared variable %s", id))
}
