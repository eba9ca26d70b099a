package mapping

// Context is the per-Map runtime state threaded through compiled plans. It
// tracks recursion depth per type pair so depth guards can truncate
// self-referential graphs at run time.
type Context struct {
	depth map[TypePair]int
}

// NewContext creates an empty context for one top-level Map invocation.
func NewContext() *Context {
	return &Context{depth: make(map[TypePair]int)}
}

func (c *Context) push(pair TypePair) { c.depth[pair]++ }

func (c *Context) pop(pair TypePair) {
	if c.depth[pair]--; c.depth[pair] <= 0 {
		delete(c.depth, pair)
	}
}

// Depth returns the current nesting depth for a type pair.
func (c *Context) Depth(pair TypePair) int { return c.depth[pair] }

// Tracked reports whether depth tracking has been seeded for a pair.
func (c *Context) Tracked(pair TypePair) bool {
	_, ok := c.depth[pair]
	return ok
}

// OverMaxDepth reports whether mapping through tm again would exceed its
// declared maximum depth. Type maps without a maximum never trip it.
func OverMaxDepth(ctx *Context, tm *TypeMap) bool {
	return tm != nil && tm.MaxDepth > 0 && ctx.Depth(tm.Pair) >= tm.MaxDepth
}

// CheckContext is the pre-check some type maps require before a refill
// loop: it validates the context is live and seeds depth tracking for the
// pair. It returns the context so it stays expressible as an accessor call.
func CheckContext(ctx *Context, tm *TypeMap) *Context {
	if ctx == nil {
		panic("mapping: nil context in compiled plan")
	}

	if _, ok := ctx.depth[tm.Pair]; !ok {
		ctx.depth[tm.Pair] = 0
	}

	return ctx
}