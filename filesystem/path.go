package filesystem

import (
	"strings"

	"github.com/brettbedarf/memfs"
)

// splitPath validates an absolute path and returns its non-empty components.
// "/" yields no components.
func splitPath(p string) ([]string, error) {
	if p == "" || !strings.HasPrefix(p, memfs.Separator) {
		return nil, memfs.ErrInvalidPath
	}
	parts := make([]string, 0, strings.Count(p, memfs.Separator))
	for _, part := range strings.Split(p, memfs.Separator) {
		switch part {
		case "":
			continue
		case ".", "..":
			// no relative navigation
			return nil, memfs.ErrInvalidPath
		}
		parts = append(parts, part)
	}
	return parts, nil
}

// walk descends from root through parts with lock coupling and returns the
// terminal node locked. Intermediate nodes are read-locked; the terminal is
// write-locked when exclusive is set.
func (fs *FileSystem) walk(parts []string, exclusive bool) (*NodeContext, error) {
	ctx := lockNode(fs.root, exclusive && len(parts) == 0)
	for i, name := range parts {
		cur := ctx.node
		if cur.kind != memfs.FolderNode {
			ctx.Close()
			return nil, memfs.ErrNotADirectory
		}
		child, ok := cur.getChildLocked(name)
		if !ok {
			ctx.Close()
			return nil, memfs.ErrNotFound
		}
		ctx.descend(child, exclusive && i == len(parts)-1)
	}
	return ctx, nil
}

// resolve returns the existing node at p, locked. Caller must Close the
// returned context.
func (fs *FileSystem) resolve(p string, exclusive bool) (*NodeContext, error) {
	parts, err := splitPath(p)
	if err != nil {
		return nil, err
	}
	return fs.walk(parts, exclusive)
}

// resolveParent returns the write-locked folder that does or would contain
// the leaf of p, plus the leaf name. It does not check whether the leaf
// exists. "/" has no parent and fails with ErrAlreadyExists since root
// always exists.
func (fs *FileSystem) resolveParent(p string) (*NodeContext, string, error) {
	parts, err := splitPath(p)
	if err != nil {
		return nil, "", err
	}
	if len(parts) == 0 {
		return nil, "", memfs.ErrAlreadyExists
	}
	ctx, err := fs.walk(parts[:len(parts)-1], true)
	if err != nil {
		return nil, "", err
	}
	if ctx.node.kind != memfs.FolderNode {
		ctx.Close()
		return nil, "", memfs.ErrNotADirectory
	}
	return ctx, parts[len(parts)-1], nil
}

// resolveForCreate is resolveParent plus the check that the leaf is free.
func (fs *FileSystem) resolveForCreate(p string) (*NodeContext, string, error) {
	ctx, name, err := fs.resolveParent(p)
	if err != nil {
		return nil, "", err
	}
	if _, exists := ctx.node.getChildLocked(name); exists {
		ctx.Close()
		return nil, "", memfs.ErrAlreadyExists
	}
	return ctx, name, nil
}
