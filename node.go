package memfs

import (
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// NodeKind tags a node as either a file or a folder.
type NodeKind uint8

const (
	FileNode NodeKind = iota + 1
	FolderNode
)

func (k NodeKind) String() string {
	switch k {
	case FileNode:
		return "file"
	case FolderNode:
		return "folder"
	default:
		return "unknown"
	}
}

// NodeInfo is a point-in-time snapshot of a node.
type NodeInfo struct {
	Name     string     // last path component; "" for root
	Path     string     // absolute path at snapshot time
	Kind     NodeKind   // file or folder
	Perm     Permission // node permission at snapshot time
	Size     int64      // content length for files, 0 for folders
	Children int        // number of children for folders, 0 for files
	Attr     fuse.Attr  // full attribute record
}

func (i NodeInfo) IsDir() bool {
	return i.Kind == FolderNode
}

// ModTime returns the last content or structure modification time.
func (i NodeInfo) ModTime() time.Time {
	return time.Unix(int64(i.Attr.Mtime), int64(i.Attr.Mtimensec))
}
