package util

import "strconv"

// Pointer simply returns a pointer to the supplied value
func Pointer[T any](v T) *T {
	return &v
}

// FdPath renders a descriptor id in the form used for error and log paths.
func FdPath(fd int) string {
	return "fd " + strconv.Itoa(fd)
}
