package filesystem

import (
	"fmt"
	"sync"
	"testing"

	"github.com/brettbedarf/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper to create a detached node
func createTestNode(name string, kind memfs.NodeKind, ino uint64) *Node {
	return NewNode(name, kind, memfs.ReadWrite, NewInode(newDefaultAttr(ino, kind, memfs.ReadWrite)))
}

// Test helper to create a root node (ino=1)
func createRootNode() *Node {
	return createTestNode("", memfs.FolderNode, rootIno)
}

func TestNewNode(t *testing.T) {
	file := createTestNode("f.txt", memfs.FileNode, 2)
	assert.Nil(t, file.children, "files never own children")
	assert.Equal(t, memfs.FileNode, file.Kind())
	assert.False(t, file.IsDir())

	dir := createTestNode("d", memfs.FolderNode, 3)
	assert.NotNil(t, dir.children)
	assert.True(t, dir.IsDir())
	assert.Equal(t, memfs.ReadWrite, dir.Perm())
}

func TestNode_AddChild(t *testing.T) {
	parent := createRootNode()
	child := createTestNode("child.txt", memfs.FileNode, 2)

	parent.mu.Lock()
	parent.addChildLocked(child)
	got, ok := parent.getChildLocked("child.txt")
	parent.mu.Unlock()

	require.True(t, ok)
	assert.Same(t, child, got)
	assert.Same(t, parent, child.parent.Load())
}

func TestNode_RemoveChild(t *testing.T) {
	parent := createRootNode()
	child := createTestNode("child.txt", memfs.FileNode, 2)

	parent.mu.Lock()
	defer parent.mu.Unlock()
	parent.addChildLocked(child)

	removed, ok := parent.removeChildLocked("child.txt")
	require.True(t, ok)
	assert.Same(t, child, removed)

	_, exists := parent.getChildLocked("child.txt")
	assert.False(t, exists)
	assert.Nil(t, child.parent.Load())
	assert.True(t, child.IsDel())

	_, ok = parent.removeChildLocked("nonexistent.txt")
	assert.False(t, ok)
}

func TestNode_Path(t *testing.T) {
	root := createRootNode()
	assert.Equal(t, "/", root.Path())

	a := createTestNode("a", memfs.FolderNode, 2)
	b := createTestNode("b", memfs.FolderNode, 3)
	f := createTestNode("f.txt", memfs.FileNode, 4)
	root.addChildLocked(a)
	a.addChildLocked(b)
	b.addChildLocked(f)

	assert.Equal(t, "/a", a.Path())
	assert.Equal(t, "/a/b/f.txt", f.Path())

	detached := createTestNode("loose", memfs.FileNode, 5)
	assert.Equal(t, "/loose", detached.Path())
}

func TestNode_ChildNames(t *testing.T) {
	root := createRootNode()
	for i := range 5 {
		root.addChildLocked(createTestNode(fmt.Sprintf("n%d", i), memfs.FileNode, uint64(i+2)))
	}
	assert.ElementsMatch(t, []string{"n0", "n1", "n2", "n3", "n4"}, root.childNamesLocked())
}

func TestNode_AddChildTouchesParent(t *testing.T) {
	root := createRootNode()
	before := root.CopyAttr()

	root.addChildLocked(createTestNode("x", memfs.FileNode, 2))

	after := root.CopyAttr()
	beforeInfo := memfs.NodeInfo{Attr: before}
	afterInfo := memfs.NodeInfo{Attr: after}
	assert.False(t, afterInfo.ModTime().Before(beforeInfo.ModTime()))
}

func TestNode_ConcurrentPathAccess(t *testing.T) {
	root := createRootNode()
	a := createTestNode("a", memfs.FolderNode, 2)
	f := createTestNode("f", memfs.FileNode, 3)
	root.addChildLocked(a)
	a.addChildLocked(f)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Equal(t, "/a/f", f.Path())
			}
		}()
	}
	wg.Wait()
}
