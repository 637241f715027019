package filesystem

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/brettbedarf/memfs"
)

// Node is an element of the tree: a file or a folder, told apart by kind.
// Folders own their children exclusively; files keep their content in the
// embedded Inode.
//
// mu guards perm and children. name and kind never change after creation
// and parent is atomic, so Path never needs to lock upward.
type Node struct {
	name     string
	kind     memfs.NodeKind
	parent   atomic.Pointer[Node] // nil for root and removed nodes
	perm     memfs.Permission     // Protected by mu
	children map[string]*Node     // Folder children by name; nil for files. Protected by mu
	mu       sync.RWMutex
	isDel    atomic.Bool
	*Inode
}

// NewNode creates a detached node. The parent folder links it with
// [Node.addChildLocked].
func NewNode(name string, kind memfs.NodeKind, perm memfs.Permission, inode *Inode) *Node {
	node := &Node{
		name:  name,
		kind:  kind,
		perm:  perm,
		Inode: inode,
	}
	if kind == memfs.FolderNode {
		node.children = make(map[string]*Node)
	}
	return node
}

// Name returns the node's immutable name.
func (n *Node) Name() string {
	return n.name
}

// Kind returns whether the node is a file or a folder.
func (n *Node) Kind() memfs.NodeKind {
	return n.kind
}

func (n *Node) IsDir() bool {
	return n.kind == memfs.FolderNode
}

// Perm returns the node's permission under its own lock.
// Not to be called while the node is locked in a NodeContext.
func (n *Node) Perm() memfs.Permission {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.perm
}

// Path returns the absolute path of the node; "/" for root.
// A removed node has no parent and reports "/<name>".
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent.Load() {
		if cur.parent.Load() == nil && cur.name == "" {
			break // root
		}
		parts = append(parts, cur.name)
	}
	if len(parts) == 0 {
		return memfs.Separator
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(memfs.Separator)
		b.WriteString(parts[i])
	}
	return b.String()
}

func (n *Node) IsDel() bool {
	return n.isDel.Load()
}

// getChildLocked looks up a child by name.
// Caller must hold n.mu (read or write).
func (n *Node) getChildLocked(name string) (*Node, bool) {
	child, ok := n.children[name]
	return child, ok
}

// addChildLocked links child under n and sets the child's parent to n.
// Caller must hold n.mu.Lock() and have checked the name is free.
func (n *Node) addChildLocked(child *Node) {
	n.children[child.name] = child
	child.parent.Store(n)
	n.Inode.Touch()
}

// removeChildLocked unlinks a child and marks it deleted.
// Caller must hold n.mu.Lock().
func (n *Node) removeChildLocked(name string) (*Node, bool) {
	child, ok := n.children[name]
	if !ok {
		return nil, false
	}
	delete(n.children, name)
	child.parent.Store(nil)
	child.isDel.Store(true)
	n.Inode.Touch()
	return child, true
}

// childNamesLocked returns the child names in map order.
// Caller must hold n.mu (read or write).
func (n *Node) childNamesLocked() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	return names
}
