// Package memfs defines the contract, permission model and error taxonomy of
// an in-memory hierarchical filesystem that is safe for concurrent use.
//
// The implementation lives in [github.com/brettbedarf/memfs/filesystem];
// obtain an instance with filesystem.Mount.
package memfs

// Separator is the only path separator understood by the filesystem.
const Separator = "/"
