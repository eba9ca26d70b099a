// Package chain decomposes access expressions into ordered member chains:
// the path of fields, getters, and accessor calls between a root value and
// a leaf value.
package chain

import (
	"errors"
	"fmt"

	"remap/internal/ir"
)

var ErrNotMemberPath = errors.New("lambda body is not a pure member path")

// Link is one step of a member chain: the access expression itself, the
// member descriptor it goes through, and the expression it was accessed
// from.
type Link struct {
	Access ir.Expr
	Member *ir.MemberInfo
	Target ir.Expr
}

// Chain is an ordered member chain, root to leaf. Contiguity invariant:
// each link's Target is exactly the previous link's Access.
type Chain []Link

// Root returns the expression the chain hangs off, or nil for an empty
// chain.
func (c Chain) Root() ir.Expr {
	if len(c) == 0 {
		return nil
	}

	return c[0].Target
}

// Leaf returns the full access expression, or nil for an empty chain.
func (c Chain) Leaf() ir.Expr {
	if len(c) == 0 {
		return nil
	}

	return c[len(c)-1].Access
}

// Resolve walks e from the leaf backward, collecting one link per member
// access, receiver call, or extension-form call, and returns the links in
// root-to-leaf order. A non-path expression yields an empty or truncated
// chain; callers that require a pure path must check the chain's root
// themselves or go through EnsureMemberPath.
func Resolve(e ir.Expr) Chain {
	var stack []Link

	cur := e
	for cur != nil {
		switch cur.Kind() {
		case ir.KindMember:
			m := cur.(*ir.Member)
			stack = append(stack, Link{Access: m, Member: m.Mem, Target: m.Target})
			cur = m.Target

		case ir.KindCall:
			c := cur.(*ir.Call)

			switch {
			case c.Target != nil:
				stack = append(stack, Link{Access: c, Member: c.Mem, Target: c.Target})
				cur = c.Target

			case c.Mem.Kind == ir.MemberExtension && len(c.Args) > 0:
				// First argument acts as the receiver.
				stack = append(stack, Link{Access: c, Member: c.Mem, Target: c.Args[0]})
				cur = c.Args[0]

			default:
				cur = nil
			}

		default:
			cur = nil
		}
	}

	// Discovery order is leaf to root; flip it.
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}

	return stack
}

// EnsureMemberPath verifies that a lambda's body is a pure chain of
// member/field/static-accessor accesses rooted at its single parameter.
// Anything else fails with ErrNotMemberPath naming the offending parameter
// and expression.
func EnsureMemberPath(l *ir.Lambda) (Chain, error) {
	if len(l.Params) != 1 {
		return nil, fmt.Errorf("%w: want exactly one parameter, got %d", ErrNotMemberPath, len(l.Params))
	}

	param := l.Params[0]
	links := Resolve(l.Body)

	if len(links) == 0 || links.Root().ID() != param.ID() {
		return nil, fmt.Errorf("%w: parameter %q, expression %s",
			ErrNotMemberPath, param.Name, ir.String(l.Body))
	}

	for _, link := range links {
		if !isAccessor(link) {
			return nil, fmt.Errorf("%w: parameter %q, expression %s",
				ErrNotMemberPath, param.Name, ir.String(link.Access))
		}
	}

	return links, nil
}

// isAccessor admits fields, getters, and argument-free static accessors;
// calls carrying extra arguments are computations, not path steps.
func isAccessor(link Link) bool {
	switch link.Member.Kind {
	case ir.MemberField, ir.MemberGetter:
		return true

	case ir.MemberFunc, ir.MemberExtension:
		call, ok := link.Access.(*ir.Call)
		return ok && len(call.Args) <= 1

	case ir.MemberMethod:
		call, ok := link.Access.(*ir.Call)
		return ok && len(call.Args) == 0

	default:
		panic(fmt.Sprintf("chain: unknown member kind %d", link.Member.Kind))
	}
}
