package filesystem

import (
	"container/heap"
	"sync"

	"github.com/brettbedarf/memfs"
	"github.com/puzpuzpuz/xsync/v4"
)

// FileDescriptor binds an open file node to a cursor and the access granted
// at open time.
type FileDescriptor struct {
	id     int
	node   *Node
	mode   memfs.Permission
	pos    int64 // Protected by mu
	closed bool  // Protected by mu
	mu     sync.Mutex
}

func (d *FileDescriptor) ID() int {
	return d.id
}

func (d *FileDescriptor) Mode() memfs.Permission {
	return d.mode
}

// Position returns the current byte offset.
func (d *FileDescriptor) Position() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pos
}

// descriptorTable maps descriptor ids to open descriptors for one
// filesystem instance. Lookups are lock-free; allocation state is guarded
// by mu. Ids are handed out lowest-free first.
type descriptorTable struct {
	entries *xsync.Map[int, *FileDescriptor]
	mu      sync.Mutex // Protects the fields below
	next    int        // lowest id never handed out
	free    idHeap     // released ids available for reuse
	live    int        // reserved + registered ids
	max     int
}

func newDescriptorTable(first, maxFDs int) *descriptorTable {
	return &descriptorTable{
		entries: xsync.NewMap[int, *FileDescriptor](),
		next:    first,
		max:     maxFDs,
	}
}

// reserve claims an id without binding it. Lookups of a reserved id fail
// until [descriptorTable.bind] is called; [descriptorTable.cancel] gives it back.
func (t *descriptorTable) reserve() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.live >= t.max {
		return -1, memfs.ErrTooManyDescriptors
	}
	t.live++
	if t.free.Len() > 0 {
		return heap.Pop(&t.free).(int), nil
	}
	id := t.next
	t.next++
	return id, nil
}

// bind registers a descriptor for a reserved id at position 0.
func (t *descriptorTable) bind(id int, node *Node, mode memfs.Permission) *FileDescriptor {
	d := &FileDescriptor{id: id, node: node, mode: mode}
	t.entries.Store(id, d)
	return d
}

// cancel returns a reserved, unbound id to the pool.
func (t *descriptorTable) cancel(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live--
	heap.Push(&t.free, id)
}

// register reserves and binds in one step.
func (t *descriptorTable) register(node *Node, mode memfs.Permission) (*FileDescriptor, error) {
	id, err := t.reserve()
	if err != nil {
		return nil, err
	}
	return t.bind(id, node, mode), nil
}

func (t *descriptorTable) lookup(id int) (*FileDescriptor, bool) {
	return t.entries.Load(id)
}

// release removes the descriptor and frees its id for reuse.
func (t *descriptorTable) release(id int) (*FileDescriptor, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.entries.LoadAndDelete(id)
	if !ok {
		return nil, false
	}
	t.live--
	heap.Push(&t.free, id)
	return d, true
}

// len returns the number of registered descriptors.
func (t *descriptorTable) len() int {
	return t.entries.Size()
}

// idHeap is a min-heap of released descriptor ids.
type idHeap []int

func (h idHeap) Len() int           { return len(h) }
func (h idHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *idHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
