package filesystem

import (
	"syscall"

	"github.com/brettbedarf/memfs"
)

type SysAttrType uint32

const (
	DirAttr  SysAttrType = syscall.S_IFDIR
	FileAttr SysAttrType = syscall.S_IFREG
)

// attrType maps a node kind onto its file type mode bits
func attrType(kind memfs.NodeKind) SysAttrType {
	switch kind {
	case memfs.FileNode:
		return FileAttr
	case memfs.FolderNode:
		return DirAttr
	default:
		panic("filesystem: unknown node kind " + kind.String())
	}
}
