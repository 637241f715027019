package memfs

import (
	"fmt"
	"strings"
)

// Permission is the capability set attached to every node and granted to
// every open descriptor.
type Permission uint8

const (
	Read      Permission = 1 << iota // may read content or list children
	Write                            // may write content or add/remove children
	ReadWrite = Read | Write
)

// Has reports whether p includes every capability in c.
// The empty capability is never satisfied.
func (p Permission) Has(c Permission) bool {
	return c != 0 && p&c == c
}

// Valid reports whether p is one of Read, Write or ReadWrite.
func (p Permission) Valid() bool {
	return p == Read || p == Write || p == ReadWrite
}

// Check reports whether a node with permission perm allows an operation
// requiring required.
func Check(perm, required Permission) bool {
	return perm.Has(required)
}

// Mode returns the permission as unix permission bits replicated for
// owner, group and other (e.g. ReadWrite => 0o666).
func (p Permission) Mode() uint32 {
	var bits uint32
	if p.Has(Read) {
		bits |= 0o444
	}
	if p.Has(Write) {
		bits |= 0o222
	}
	return bits
}

func (p Permission) String() string {
	switch p {
	case Read:
		return "r"
	case Write:
		return "w"
	case ReadWrite:
		return "rw"
	default:
		return fmt.Sprintf("Permission(%d)", uint8(p))
	}
}

// ParsePermission accepts the short ("r", "w", "rw") and long ("read",
// "write", "readwrite") forms, case-insensitively.
func ParsePermission(s string) (Permission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "r", "read":
		return Read, nil
	case "w", "write":
		return Write, nil
	case "rw", "wr", "readwrite", "read_write", "read-write":
		return ReadWrite, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPermission, s)
}

// MarshalText implements encoding.TextMarshaler so permissions can be used
// in YAML and JSON config files.
func (p Permission) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPermission, uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Permission) UnmarshalText(text []byte) error {
	parsed, err := ParsePermission(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
