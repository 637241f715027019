package filesystem

import (
	"io"
	"math"

	"github.com/brettbedarf/memfs"
	"github.com/brettbedarf/memfs/internal/util"
)

// lockDescriptor returns the open descriptor fd with its mutex held.
// Caller must unlock d.mu.
func (fs *FileSystem) lockDescriptor(fd int) (*FileDescriptor, error) {
	d, ok := fs.fds.lookup(fd)
	if !ok {
		return nil, memfs.ErrInvalidDescriptor
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, memfs.ErrInvalidDescriptor
	}
	return d, nil
}

// Read copies up to len(buf) bytes from the descriptor's position and
// advances it. A read at or past end of content copies nothing and is not
// an error.
func (fs *FileSystem) Read(fd int, buf []byte) (int, error) {
	logger := fs.logger("FS.Read")
	logger.Trace().Int("fd", fd).Int("size", len(buf)).Msg("Read called")

	d, err := fs.lockDescriptor(fd)
	if err != nil {
		return 0, fail(&logger, memfs.OpRead, util.FdPath(fd), err)
	}
	defer d.mu.Unlock()

	if !d.mode.Has(memfs.Read) {
		return 0, fail(&logger, memfs.OpRead, util.FdPath(fd), memfs.ErrPermissionDenied)
	}
	n := d.node.ReadAt(buf, d.pos)
	d.pos += int64(n)
	return n, nil
}

// Write writes data at the descriptor's position and advances it. Content
// grows as needed; a gap left by seeking past the end reads back as zeros.
func (fs *FileSystem) Write(fd int, data []byte) (int, error) {
	logger := fs.logger("FS.Write")
	logger.Trace().Int("fd", fd).Int("size", len(data)).Msg("Write called")

	d, err := fs.lockDescriptor(fd)
	if err != nil {
		return 0, fail(&logger, memfs.OpWrite, util.FdPath(fd), err)
	}
	defer d.mu.Unlock()

	if !d.mode.Has(memfs.Write) {
		return 0, fail(&logger, memfs.OpWrite, util.FdPath(fd), memfs.ErrPermissionDenied)
	}
	if len(data) > 0 && int64(len(data)) > fs.cfg.MaxFileSize-d.pos {
		return 0, fail(&logger, memfs.OpWrite, util.FdPath(fd), memfs.ErrFileTooLarge)
	}
	n, err := d.node.WriteAt(data, d.pos)
	if err != nil {
		return 0, fail(&logger, memfs.OpWrite, util.FdPath(fd), err)
	}
	d.pos += int64(n)
	return n, nil
}

// Seek sets the descriptor's position to offset relative to whence
// (io.SeekStart, io.SeekCurrent or io.SeekEnd) and returns it.
//
// Positions past end of content are allowed; the next write zero-fills the
// gap.
func (fs *FileSystem) Seek(fd int, offset int64, whence int) (int64, error) {
	logger := fs.logger("FS.Seek")
	logger.Trace().Int("fd", fd).Int64("offset", offset).Int("whence", whence).Msg("Seek called")

	d, err := fs.lockDescriptor(fd)
	if err != nil {
		return 0, fail(&logger, memfs.OpSeek, util.FdPath(fd), err)
	}
	defer d.mu.Unlock()

	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = d.pos
	case io.SeekEnd:
		base = d.node.Size()
	default:
		return 0, fail(&logger, memfs.OpSeek, util.FdPath(fd), memfs.ErrInvalidWhence)
	}
	if offset > 0 && base > math.MaxInt64-offset {
		return 0, fail(&logger, memfs.OpSeek, util.FdPath(fd), memfs.ErrOffsetOutOfRange)
	}
	pos := base + offset
	if pos < 0 {
		return 0, fail(&logger, memfs.OpSeek, util.FdPath(fd), memfs.ErrOffsetOutOfRange)
	}
	d.pos = pos
	return pos, nil
}
