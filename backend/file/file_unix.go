//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package file

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive takes a non-blocking advisory exclusive lock on f, failing
// fast if another process already holds one rather than risking a second
// writer on the same backing image.
func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

// syncFile flushes f's data, and the metadata needed to read it back, to
// the underlying device.
func syncFile(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
