//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package eventlog

// lockFile is a no-op where flock(2) is unavailable; in-process callers are
// still serialised by the Logger mutex.
func lockFile(path string) (func(), error) {
	return func() {}, nil
}
