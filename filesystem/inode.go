package filesystem

import (
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/config"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const blockSize = 512 // unit of fuse.Attr.Blocks

// Inode holds a node's attributes and, for files, its content.
// It has its own lock so content I/O never waits on tree traversal.
type Inode struct {
	// Low-level fuse wire protocol attributes; Only access directly if
	// handling locks manually
	fuseAttr *fuse.Attr
	data     []byte // file content; always nil for folders
	mu       sync.RWMutex
}

func NewInode(attr *fuse.Attr) *Inode {
	return &Inode{fuseAttr: attr}
}

// CopyAttr returns a thread-safe copy of the inode's attributes
func (n *Inode) CopyAttr() fuse.Attr {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return *n.fuseAttr
}

// Size returns the current content length
func (n *Inode) Size() int64 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return int64(len(n.data))
}

// ReadAt copies content starting at off into buf and returns the byte count.
// Offsets at or past the end copy nothing.
func (n *Inode) ReadAt(buf []byte, off int64) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if off >= int64(len(n.data)) {
		return 0
	}
	return copy(buf, n.data[off:])
}

// WriteAt writes p at off, growing the content when the write ends past it.
// Any gap between the old end and off is zero-filled. Writes ending past
// [config.MaxFileSizeLimit] fail with memfs.ErrFileTooLarge and change nothing.
func (n *Inode) WriteAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 {
		return 0, memfs.ErrOffsetOutOfRange
	}
	if int64(len(p)) > config.MaxFileSizeLimit || off > config.MaxFileSizeLimit-int64(len(p)) {
		return 0, memfs.ErrFileTooLarge
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	end := int(off) + len(p)
	if oldLen := len(n.data); end > oldLen {
		n.data = slices.Grow(n.data, end-oldLen)[:end]
		if int(off) > oldLen {
			clear(n.data[oldLen:off])
		}
	}
	copy(n.data[off:], p)

	n.fuseAttr.Size = uint64(len(n.data))
	n.fuseAttr.Blocks = (n.fuseAttr.Size + blockSize - 1) / blockSize
	n.touchLocked(time.Now())
	return len(p), nil
}

// Touch marks the inode as modified now; used by folders when their
// children change.
func (n *Inode) Touch() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.touchLocked(time.Now())
}

// touchLocked updates modification and change times.
// Caller must hold n.mu.Lock().
func (n *Inode) touchLocked(now time.Time) {
	n.fuseAttr.SetTimes(nil, &now, &now)
}

// setModeLocked replaces the permission bits, keeping the file type bits.
// Caller must hold n.mu.Lock().
func (n *Inode) setModeLocked(perm memfs.Permission) {
	n.fuseAttr.Mode = n.fuseAttr.Mode&syscall.S_IFMT | perm.Mode()
	now := time.Now()
	n.fuseAttr.SetTimes(nil, nil, &now)
}

// SetMode replaces the permission bits of the attributes.
func (n *Inode) SetMode(perm memfs.Permission) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.setModeLocked(perm)
}
