//go:build !windows

package fileutil

import "os"

// MkdirPrivate creates path and any missing parents with mode 0700.
// Existing directories keep their mode.
func MkdirPrivate(path string) error {
	return os.MkdirAll(path, dirPerm)
}

// OpenPrivate opens path with flag, creating it with mode 0600.
func OpenPrivate(path string, flag int) (*os.File, error) {
	return os.OpenFile(path, flag, filePerm)
}
