package filesystem

import (
	"slices"
	"strings"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
)

// infoLocked snapshots n. Caller must hold n.mu (read or write).
func infoLocked(n *Node) memfs.NodeInfo {
	attr := n.CopyAttr()
	info := memfs.NodeInfo{
		Name: n.name,
		Path: n.Path(),
		Kind: n.kind,
		Perm: n.perm,
		Attr: attr,
	}
	switch n.kind {
	case memfs.FileNode:
		info.Size = int64(attr.Size)
	case memfs.FolderNode:
		info.Children = len(n.children)
	}
	return info
}

// Stat describes the node at p.
func (fs *FileSystem) Stat(p string) (memfs.NodeInfo, error) {
	logger := fs.logger("FS.Stat")
	logger.Trace().Str("path", p).Msg("Stat called")

	ctx, err := fs.resolve(p, false)
	if err != nil {
		return memfs.NodeInfo{}, fail(&logger, memfs.OpStat, p, err)
	}
	defer ctx.Close()
	return infoLocked(ctx.node), nil
}

// Fstat describes the file behind fd.
func (fs *FileSystem) Fstat(fd int) (memfs.NodeInfo, error) {
	logger := fs.logger("FS.Fstat")
	logger.Trace().Int("fd", fd).Msg("Fstat called")

	d, ok := fs.fds.lookup(fd)
	if !ok {
		return memfs.NodeInfo{}, fail(&logger, memfs.OpStat, util.FdPath(fd), memfs.ErrInvalidDescriptor)
	}
	// a lone node lock holds no ancestor, so it cannot invert tree lock order
	ctx := lockNode(d.node, false)
	defer ctx.Close()
	return infoLocked(ctx.node), nil
}

// ReadDir lists the folder at p sorted by name. The folder must be readable.
func (fs *FileSystem) ReadDir(p string) ([]memfs.NodeInfo, error) {
	logger := fs.logger("FS.ReadDir")
	logger.Trace().Str("path", p).Msg("ReadDir called")

	ctx, err := fs.resolve(p, false)
	if err != nil {
		return nil, fail(&logger, memfs.OpReadDir, p, err)
	}
	defer ctx.Close()

	dir := ctx.node
	if dir.kind != memfs.FolderNode {
		return nil, fail(&logger, memfs.OpReadDir, p, memfs.ErrNotADirectory)
	}
	if !dir.perm.Has(memfs.Read) {
		return nil, fail(&logger, memfs.OpReadDir, p, memfs.ErrPermissionDenied)
	}

	names := dir.childNamesLocked()
	slices.SortFunc(names, strings.Compare)
	entries := make([]memfs.NodeInfo, 0, len(names))
	for _, name := range names {
		child, _ := dir.getChildLocked(name)
		cctx := lockNode(child, false)
		entries = append(entries, infoLocked(child))
		cctx.Close()
	}
	return entries, nil
}

// Chmod replaces the permission of the node at p. Descriptors already open
// keep the access they were granted.
func (fs *FileSystem) Chmod(p string, perm memfs.Permission) error {
	logger := fs.logger("FS.Chmod")
	logger.Trace().Str("path", p).Str("perm", perm.String()).Msg("Chmod called")

	if !perm.Valid() {
		return fail(&logger, memfs.OpChmod, p, memfs.ErrInvalidPermission)
	}
	ctx, err := fs.resolve(p, true)
	if err != nil {
		return fail(&logger, memfs.OpChmod, p, err)
	}
	defer ctx.Close()

	ctx.node.perm = perm
	ctx.node.SetMode(perm)
	logger.Debug().Str("path", p).Str("perm", perm.String()).Msg("Changed permission")
	return nil
}
