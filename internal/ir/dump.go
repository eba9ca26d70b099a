package ir

import "github.com/davecgh/go-spew/spew"

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump deep-dumps a tree with node identifiers and reflection descriptors
// intact. Debug aid only; String is the stable rendering.
func Dump(e Expr) string { return dumper.Sdump(e) }
