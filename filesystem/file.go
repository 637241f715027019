package filesystem

import (
	"io"

	"github.com/brettbedarf/memfs"
)

var _ memfs.Handle = (*File)(nil)

// File adapts a descriptor to the io interfaces. Unlike [FileSystem.Read],
// File.Read reports io.EOF once no bytes remain so helpers like io.ReadAll
// and io.Copy terminate.
type File struct {
	fs *FileSystem
	fd int
}

// OpenFile opens the file at p and wraps the descriptor.
func (fs *FileSystem) OpenFile(p string, access memfs.Permission) (*File, error) {
	fd, err := fs.Open(p, access)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs, fd: fd}, nil
}

// CreateFile creates the file at p and wraps the new descriptor.
func (fs *FileSystem) CreateFile(p string, perm memfs.Permission) (*File, error) {
	fd, err := fs.Create(p, perm)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs, fd: fd}, nil
}

// Fd returns the underlying descriptor id.
func (f *File) Fd() int {
	return f.fd
}

func (f *File) Read(p []byte) (int, error) {
	n, err := f.fs.Read(f.fd, p)
	if err != nil {
		return n, err
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (f *File) Write(p []byte) (int, error) {
	return f.fs.Write(f.fd, p)
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.fs.Seek(f.fd, offset, whence)
}

func (f *File) Stat() (memfs.NodeInfo, error) {
	return f.fs.Fstat(f.fd)
}

func (f *File) Close() error {
	return f.fs.Close(f.fd)
}
