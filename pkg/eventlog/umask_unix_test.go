//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package eventlog

import (
	"os"

	"golang.org/x/sys/unix"
)

func createMode() (os.FileMode, bool) {
	mask := unix.Umask(0)
	unix.Umask(mask)
	return os.FileMode(0o644) &^ os.FileMode(mask), true
}
