package filesystem

// NodeContext wraps a locked [Node].
// Calling NodeContext.Close() unwinds all unlocking/cleanup callbacks in reverse order.
// Do NOT invoke any locking methods on the raw Node while this context is
// active; use the *Locked helpers instead.
//
// NOTE: NodeContext itself is **not** thread-safe meaning references
// to it should not be shared between goroutines
type NodeContext struct {
	node      *Node
	closeFns  []func()
	exclusive bool // node is write-locked rather than read-locked
}

// lockNode locks n (exclusively if requested) and returns a context for it
func lockNode(n *Node, exclusive bool) *NodeContext {
	ctx := &NodeContext{}
	ctx.acquire(n, exclusive)
	return ctx
}

func (ctx *NodeContext) acquire(n *Node, exclusive bool) {
	if exclusive {
		n.mu.Lock()
		ctx.AddClose(n.mu.Unlock)
	} else {
		n.mu.RLock()
		ctx.AddClose(n.mu.RUnlock)
	}
	ctx.node = n
	ctx.exclusive = exclusive
}

// descend moves the context to child, locking the child before the current
// node is released. Tree locks are only ever taken top-down.
func (ctx *NodeContext) descend(child *Node, exclusive bool) {
	held := ctx.closeFns
	ctx.closeFns = nil
	ctx.acquire(child, exclusive)
	for i := len(held) - 1; i >= 0; i-- {
		held[i]()
	}
}

// Node returns the locked node.
func (ctx *NodeContext) Node() *Node {
	return ctx.node
}

// AddClose pushes a cleanup callback (e.g., unlock) onto the end of the stack.
func (ctx *NodeContext) AddClose(fn func()) {
	ctx.closeFns = append(ctx.closeFns, fn)
}

// Close unwinds all cleanup callbacks in reverse order.
// Safe to call even if ctx is nil or no locks were acquired; it is
// a no-op in those cases, so you can `defer ctx.Close()` unconditionally.
//
// Example:
//
//	ctx, err := fs.resolve(p, false)
//	defer ctx.Close()
func (ctx *NodeContext) Close() {
	if ctx == nil {
		return
	}
	for i := len(ctx.closeFns) - 1; i >= 0; i-- {
		ctx.closeFns[i]()
	}
	ctx.closeFns = nil
}
