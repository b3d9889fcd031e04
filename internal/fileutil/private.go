// Package fileutil creates files and directories readable only by the
// current user. tempbox keeps mailbox names and message logs under its home
// directory, so nothing there should be shared.
package fileutil

import "os"

const (
	dirPerm  os.FileMode = 0700
	filePerm os.FileMode = 0600
)
