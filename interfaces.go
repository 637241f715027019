package memfs

import "io"

// FileSystem is the operation surface of an in-memory filesystem instance.
// All methods are safe for concurrent use.
//
// Paths are absolute ("/a/b"). Descriptors are small integers unique among
// the live descriptors of one instance.
type FileSystem interface {
	// Create makes an empty file at path with permission perm and returns a
	// descriptor opened with access perm.
	Create(path string, perm Permission) (int, error)

	// Open returns a new descriptor for an existing file. The file's
	// permission must include access.
	Open(path string, access Permission) (int, error)

	// Close releases the descriptor. Its id may be handed out again later.
	Close(fd int) error

	// Read copies up to len(buf) bytes from the descriptor's position.
	// Reading at or past end of content returns 0 and no error.
	Read(fd int, buf []byte) (int, error)

	// Write writes data at the descriptor's position, growing the file as
	// needed and zero-filling any gap left by a seek past the end.
	Write(fd int, data []byte) (int, error)

	// Seek sets the descriptor's position relative to whence
	// (io.SeekStart, io.SeekCurrent or io.SeekEnd) and returns it.
	Seek(fd int, offset int64, whence int) (int64, error)

	// Mkdir creates an empty folder at path.
	Mkdir(path string) error

	// Rmdir removes the empty folder at path.
	Rmdir(path string) error

	// Stat describes the node at path.
	Stat(path string) (NodeInfo, error)

	// Fstat describes the file behind an open descriptor.
	Fstat(fd int) (NodeInfo, error)

	// ReadDir lists a folder's children sorted by name.
	ReadDir(path string) ([]NodeInfo, error)

	// Chmod replaces the permission of the node at path. Open descriptors
	// keep the access they were granted.
	Chmod(path string, perm Permission) error
}

// Handle is an open file with its own cursor, usable with io helpers.
type Handle interface {
	io.ReadWriteSeeker
	io.Closer
	Fd() int
}
