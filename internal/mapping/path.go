package mapping

import (
	"fmt"
	"reflect"
	"strings"

	"remap/internal/ir"
)

// PathLambda turns a dotted member path ("Address.City") into the lambda
// form the chain resolver consumes: one parameter of the root type, body a
// chain of field or getter accesses. Each segment resolves against the
// static type of the previous step; fields win over getters on a name
// clash.
func PathLambda(root reflect.Type, path string) (*ir.Lambda, error) {
	param := ir.NewParam("src", root)

	var cur ir.Expr = param
	for _, seg := range strings.Split(path, ".") {
		if seg == "" {
			return nil, fmt.Errorf("empty segment in member path %q", path)
		}

		mem, err := ir.FieldOf(cur.Type(), seg)
		if err != nil {
			mem, err = ir.GetterOf(cur.Type(), seg)
		}

		if err != nil {
			return nil, fmt.Errorf("member path %q: %w", path, err)
		}

		cur = ir.NewMember(cur, mem)
	}

	return ir.NewLambda(cur, param), nil
}
