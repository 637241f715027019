package filesystem

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/config"
	"github.com/brettbedarf/memfs/internal/util"
	"github.com/google/uuid"
	"github.com/hanwen/go-fuse/v2/fuse"
)

const rootIno = fuse.FUSE_ROOT_ID

var _ memfs.FileSystem = (*FileSystem)(nil)

// FileSystem is an in-memory tree of files and folders plus the table of
// descriptors open against it. It is safe for concurrent use.
type FileSystem struct {
	cfg     *config.Config
	id      uuid.UUID
	root    *Node         // Root of node tree; never removed
	lastIno atomic.Uint64 // Last fuse Attr.Ino assigned; incremented when new nodes are created
	fds     *descriptorTable
}

// Mount returns a fresh filesystem with an empty root folder and no open
// descriptors. A nil cfg uses [config.NewDefaultConfig]; an invalid cfg is
// rejected.
func Mount(cfg *config.Config) (*FileSystem, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewFS(cfg), nil
}

// NewFS builds a filesystem from an already validated cfg.
func NewFS(cfg *config.Config) *FileSystem {
	fs := &FileSystem{
		cfg: cfg,
		id:  uuid.New(),
		fds: newDescriptorTable(cfg.FirstFD, cfg.MaxFDs),
	}
	fs.lastIno.Store(rootIno)
	fs.root = NewNode("", memfs.FolderNode, cfg.RootPerm, NewInode(newDefaultAttr(rootIno, memfs.FolderNode, cfg.RootPerm)))

	logger := fs.logger("FS.Mount")
	logger.Debug().Str("rootPerm", cfg.RootPerm.String()).Msg("Mounted filesystem")
	return fs
}

// ID returns the random identifier of this instance
func (fs *FileSystem) ID() uuid.UUID {
	return fs.id
}

// Config returns the configuration the instance was mounted with.
func (fs *FileSystem) Config() config.Config {
	return *fs.cfg
}

// OpenCount returns the number of open descriptors.
func (fs *FileSystem) OpenCount() int {
	return fs.fds.len()
}

// logger returns a component logger tagged with this instance and limited to
// the configured level
func (fs *FileSystem) logger(component string) util.Logger {
	return util.GetLogger(component).Level(util.ZerologLevel(fs.cfg.LogLvl)).With().
		Str("fs", fs.cfg.Name).
		Str("fsid", fs.id.String()).
		Logger()
}

// fail wraps err with the operation context and logs it. Failures are
// ordinary results for callers, so they are logged at debug level only.
func fail(logger *util.Logger, op, path string, err error) error {
	logger.Debug().Err(err).Str("path", path).Msg("Operation failed")
	return &memfs.Error{Op: op, Path: path, Err: err}
}

// Create makes an empty file at p and opens it with access perm.
func (fs *FileSystem) Create(p string, perm memfs.Permission) (int, error) {
	logger := fs.logger("FS.Create")
	logger.Trace().Str("path", p).Str("perm", perm.String()).Msg("Create called")

	if !perm.Valid() {
		return -1, fail(&logger, memfs.OpCreate, p, memfs.ErrInvalidPermission)
	}
	// Claim the id first so a full table fails before the tree is touched.
	// The table lock is never held together with a node lock.
	fd, err := fs.fds.reserve()
	if err != nil {
		return -1, fail(&logger, memfs.OpCreate, p, err)
	}
	node, err := fs.addNode(p, memfs.FileNode, perm)
	if err != nil {
		fs.fds.cancel(fd)
		return -1, fail(&logger, memfs.OpCreate, p, err)
	}
	fs.fds.bind(fd, node, perm)
	logger.Debug().Str("path", p).Int("fd", fd).Msg("Created file")
	return fd, nil
}

// Mkdir creates an empty folder at p with the configured folder permission.
func (fs *FileSystem) Mkdir(p string) error {
	logger := fs.logger("FS.Mkdir")
	logger.Trace().Str("path", p).Msg("Mkdir called")

	if _, err := fs.addNode(p, memfs.FolderNode, fs.cfg.DirPerm); err != nil {
		return fail(&logger, memfs.OpMkdir, p, err)
	}
	logger.Debug().Str("path", p).Msg("Created folder")
	return nil
}

// addNode inserts a new empty node of kind at p. The parent must be a
// writable folder without a child of the same name.
func (fs *FileSystem) addNode(p string, kind memfs.NodeKind, perm memfs.Permission) (*Node, error) {
	parent, name, err := fs.resolveForCreate(p)
	if err != nil {
		return nil, err
	}
	defer parent.Close()

	if !parent.node.perm.Has(memfs.Write) {
		return nil, memfs.ErrPermissionDenied
	}
	attr := newDefaultAttr(fs.lastIno.Add(1), kind, perm)
	node := NewNode(name, kind, perm, NewInode(attr))
	parent.node.addChildLocked(node)
	return node, nil
}

// Rmdir removes the empty folder at p. Root can never be removed.
func (fs *FileSystem) Rmdir(p string) error {
	logger := fs.logger("FS.Rmdir")
	logger.Trace().Str("path", p).Msg("Rmdir called")

	if err := fs.removeDir(p); err != nil {
		return fail(&logger, memfs.OpRmdir, p, err)
	}
	logger.Debug().Str("path", p).Msg("Removed folder")
	return nil
}

func (fs *FileSystem) removeDir(p string) error {
	parts, err := splitPath(p)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return memfs.ErrRootRemoval
	}
	parent, name, err := fs.resolveParent(p)
	if err != nil {
		return err
	}
	defer parent.Close()

	child, ok := parent.node.getChildLocked(name)
	if !ok {
		return memfs.ErrNotFound
	}
	if child.kind != memfs.FolderNode {
		return memfs.ErrNotADirectory
	}
	if !parent.node.perm.Has(memfs.Write) {
		return memfs.ErrPermissionDenied
	}

	// descend while still holding the parent so nothing is added meanwhile
	target := lockNode(child, true)
	defer target.Close()
	if len(child.children) > 0 {
		return memfs.ErrDirectoryNotEmpty
	}
	parent.node.removeChildLocked(name)
	return nil
}

// Open returns a new descriptor for the existing file at p.
func (fs *FileSystem) Open(p string, access memfs.Permission) (int, error) {
	logger := fs.logger("FS.Open")
	logger.Trace().Str("path", p).Str("access", access.String()).Msg("Open called")

	if !access.Valid() {
		return -1, fail(&logger, memfs.OpOpen, p, memfs.ErrInvalidPermission)
	}
	node, err := fs.lookupFile(p, access)
	if err != nil {
		return -1, fail(&logger, memfs.OpOpen, p, err)
	}
	// node lock released above; table lock taken on its own
	d, err := fs.fds.register(node, access)
	if err != nil {
		return -1, fail(&logger, memfs.OpOpen, p, err)
	}
	logger.Trace().Str("path", p).Int("fd", d.id).Msg("Opened file")
	return d.id, nil
}

// lookupFile resolves p to a file whose permission includes access.
func (fs *FileSystem) lookupFile(p string, access memfs.Permission) (*Node, error) {
	ctx, err := fs.resolve(p, false)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	node := ctx.node
	switch node.kind {
	case memfs.FolderNode:
		return nil, memfs.ErrNotAFile
	case memfs.FileNode:
		if !memfs.Check(node.perm, access) {
			return nil, memfs.ErrPermissionDenied
		}
		return node, nil
	default:
		return nil, memfs.ErrNotAFile
	}
}

// Close releases fd. Operations already running against it finish first.
func (fs *FileSystem) Close(fd int) error {
	logger := fs.logger("FS.Close")
	logger.Trace().Int("fd", fd).Msg("Close called")

	d, ok := fs.fds.release(fd)
	if !ok {
		return fail(&logger, memfs.OpClose, util.FdPath(fd), memfs.ErrInvalidDescriptor)
	}
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// newDefaultAttr returns the attributes for a new node of kind with perm
func newDefaultAttr(ino uint64, kind memfs.NodeKind, perm memfs.Permission) *fuse.Attr {
	now := time.Now()
	nlink := uint32(1)
	if kind == memfs.FolderNode {
		nlink = 2 // "." plus the entry in its parent
	}
	return &fuse.Attr{
		Ino:   ino,
		Mode:  uint32(attrType(kind)) | perm.Mode(),
		Nlink: nlink,
		Owner: fuse.Owner{
			Uid: uint32(os.Getuid()),
			Gid: uint32(os.Getgid()),
		},
		Atime:     uint64(now.Unix()),
		Mtime:     uint64(now.Unix()),
		Ctime:     uint64(now.Unix()),
		Atimensec: uint32(now.Nanosecond()),
		Mtimensec: uint32(now.Nanosecond()),
		Ctimensec: uint32(now.Nanosecond()),
		Blksize:   4096, // preferred size for fs ops
	}
}
