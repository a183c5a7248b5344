//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package eventlog

import "os"

func createMode() (os.FileMode, bool) {
	return 0, false
}
