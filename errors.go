package memfs

import (
	"errors"
	"fmt"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fuse"
)

// Failure kinds returned by filesystem operations. All of them are
// recoverable; the filesystem stays usable after any of them.
var (
	ErrNotFound           = errors.New("no such file or directory")
	ErrNotADirectory      = errors.New("not a directory")
	ErrNotAFile           = errors.New("not a file")
	ErrAlreadyExists      = errors.New("file exists")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidDescriptor  = errors.New("invalid file descriptor")
	ErrOffsetOutOfRange   = errors.New("offset out of range")
	ErrDirectoryNotEmpty  = errors.New("directory not empty")
	ErrInvalidPath        = errors.New("invalid path")
	ErrInvalidPermission  = errors.New("invalid permission")
	ErrInvalidWhence      = errors.New("invalid whence")
	ErrTooManyDescriptors = errors.New("too many open descriptors")
	ErrFileTooLarge       = errors.New("file too large")

	// ErrRootRemoval is returned when removing "/". It matches
	// ErrPermissionDenied under errors.Is.
	ErrRootRemoval = fmt.Errorf("cannot remove root: %w", ErrPermissionDenied)
)

// Error records a failed operation together with the path or descriptor it
// was applied to.
type Error struct {
	Op   string // Operation that failed (e.g. "open", "rmdir")
	Path string // Affected path, or "fd N" for descriptor operations
	Err  error  // Underlying failure kind
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Operation names used in [Error.Op].
const (
	OpCreate  = "create"
	OpOpen    = "open"
	OpClose   = "close"
	OpRead    = "read"
	OpWrite   = "write"
	OpSeek    = "seek"
	OpMkdir   = "mkdir"
	OpRmdir   = "rmdir"
	OpStat    = "stat"
	OpReadDir = "readdir"
	OpChmod   = "chmod"
)

// Errno translates an error from this package into the closest POSIX errno.
// Unknown errors map to EIO; nil maps to 0.
func Errno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, ErrNotADirectory):
		return syscall.ENOTDIR
	case errors.Is(err, ErrNotAFile):
		return syscall.EISDIR
	case errors.Is(err, ErrAlreadyExists):
		return syscall.EEXIST
	case errors.Is(err, ErrRootRemoval):
		return syscall.EBUSY
	case errors.Is(err, ErrPermissionDenied):
		return syscall.EACCES
	case errors.Is(err, ErrInvalidDescriptor):
		return syscall.EBADF
	case errors.Is(err, ErrDirectoryNotEmpty):
		return syscall.ENOTEMPTY
	case errors.Is(err, ErrTooManyDescriptors):
		return syscall.EMFILE
	case errors.Is(err, ErrFileTooLarge):
		return syscall.EFBIG
	case errors.Is(err, ErrOffsetOutOfRange),
		errors.Is(err, ErrInvalidPath),
		errors.Is(err, ErrInvalidPermission),
		errors.Is(err, ErrInvalidWhence):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}

// Status translates an error into a go-fuse status code, for callers bridging
// this filesystem to FUSE-style consumers.
func Status(err error) fuse.Status {
	if err == nil {
		return fuse.OK
	}
	return fuse.ToStatus(Errno(err))
}
