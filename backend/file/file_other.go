//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)

package file

import "os"

// lockExclusive is a no-op on platforms without POSIX advisory locking.
func lockExclusive(f *os.File) error {
	return nil
}

// syncFile falls back to the standard library's Sync.
func syncFile(f *os.File) error {
	return f.Sync()
}
