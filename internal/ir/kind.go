package ir

// Kind tags every expression node. The set is closed: consumers dispatch with
// exhaustive switches and panic on anything outside it.
type Kind int

const (
	KindConst Kind = iota
	KindParam
	KindVar
	KindMember
	KindCall
	KindCond
	KindBlock
	KindLoop
	KindBreak
	KindAssign
	KindEqual
	KindConvert
	KindLambda
	KindScoped

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindConst:
		return "const"
	case KindParam:
		return "param"
	case KindVar:
		return "var"
	case KindMember:
		return "member"
	case KindCall:
		return "call"
	case KindCond:
		return "cond"
	case KindBlock:
		return "block"
	case KindLoop:
		return "loop"
	case KindBreak:
		return "break"
	case KindAssign:
		return "assign"
	case KindEqual:
		return "equal"
	case KindConvert:
		return "convert"
	case KindLambda:
		return "lambda"
	case KindScoped:
		return "scoped"
	default:
		return "unknown"
	}
}
