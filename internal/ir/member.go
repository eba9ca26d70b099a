package ir

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNoSuchMember   = errors.New("type has no such member")
	ErrNotAGetter     = errors.New("method is not a getter (want no arguments, one result)")
	ErrNotAFunction   = errors.New("provided accessor is not a function")
	ErrNoReceiverSlot = errors.New("extension accessor needs at least one argument")
	ErrVoidAccessor   = errors.New("accessor returns no value")
)

// MemberKind identifies which flavor of member an access step goes through.
// The set is closed; chain building treats anything outside it as a logic
// defect, not a recoverable condition.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberGetter
	MemberMethod
	MemberFunc
	MemberExtension

	// MemberKindTotal is a constant that represents the total number of kinds defined
	MemberKindTotal = int(iota)
)

// String returns a human-readable member kind name.
func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberGetter:
		return "getter"
	case MemberMethod:
		return "method"
	case MemberFunc:
		return "func"
	case MemberExtension:
		return "extension"
	default:
		return "unknown"
	}
}

// MemberInfo is the reflection descriptor behind a Member or Call node: a
// struct field, a getter or method (receiver-included func value), a free
// function, or an extension-style function whose first argument acts as the
// receiver.
type MemberInfo struct {
	Kind  MemberKind
	Name  string
	Owner reflect.Type

	// Field is set for MemberField.
	Field reflect.StructField
	// Func is the receiver-included method func (getter/method) or the bare
	// function value (func/extension).
	Func reflect.Value

	typ reflect.Type
}

// Type returns the static type an access through this member yields.
func (m *MemberInfo) Type() reflect.Type { return m.typ }

// FieldOf resolves a struct field accessor on owner (pointers are walked to
// their struct base).
func FieldOf(owner reflect.Type, name string) (*MemberInfo, error) {
	base := owner
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}

	if base.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrNoSuchMember, owner)
	}

	field, ok := base.FieldByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMember, base, name)
	}

	return &MemberInfo{
		Kind:  MemberField,
		Name:  name,
		Owner: owner,
		Field: field,
		typ:   field.Type,
	}, nil
}

// GetterOf resolves a no-argument, single-result method accessor on owner.
func GetterOf(owner reflect.Type, name string) (*MemberInfo, error) {
	method, ok := owner.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMember, owner, name)
	}

	// Func includes the receiver as argument zero.
	if method.Type.NumIn() != 1 || method.Type.NumOut() != 1 {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotAGetter, owner, name)
	}

	return &MemberInfo{
		Kind:  MemberGetter,
		Name:  name,
		Owner: owner,
		Func:  method.Func,
		typ:   method.Type.Out(0),
	}, nil
}

// MethodOf resolves an instance method on owner; unlike GetterOf it admits
// extra arguments.
func MethodOf(owner reflect.Type, name string) (*MemberInfo, error) {
	method, ok := owner.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMember, owner, name)
	}

	if method.Type.NumOut() == 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrVoidAccessor, owner, name)
	}

	return &MemberInfo{
		Kind:  MemberMethod,
		Name:  name,
		Owner: owner,
		Func:  method.Func,
		typ:   method.Type.Out(0),
	}, nil
}

// FuncOf wraps a free function as a static accessor.
func FuncOf(name string, fn any) (*MemberInfo, error) {
	fnVal := reflect.ValueOf(fn)
	if fnVal.Kind() != reflect.Func {
		return nil, ErrNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.NumOut() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrVoidAccessor, name)
	}

	return &MemberInfo{
		Kind: MemberFunc,
		Name: name,
		Func: fnVal,
		typ:  fnType.Out(0),
	}, nil
}

// ExtensionOf wraps a free function whose first argument acts as the
// receiver, so chain resolution can treat calls through it as access steps.
func ExtensionOf(name string, fn any) (*MemberInfo, error) {
	info, err := FuncOf(name, fn)
	if err != nil {
		return nil, err
	}

	if info.Func.Type().NumIn() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoReceiverSlot, name)
	}

	info.Kind = MemberExtension
	info.Owner = info.Func.Type().In(0)

	return info, nil
}

// MustField is FieldOf for statically known fields; it panics on failure.
func MustField(owner reflect.Type, name string) *MemberInfo {
	info, err := FieldOf(owner, name)
	if err != nil {
		panic(err)
	}

	return info
}

// MustFunc is FuncOf for statically known functions; it panics on failure.
func MustFunc(name string, fn any) *MemberInfo {
	info, err := FuncOf(name, fn)
	if err != nil {
		panic(err)
	}

	return info
}
