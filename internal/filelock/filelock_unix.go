//go:build !windows

package filelock

import (
	"os"
	"syscall"
)

// flock(2) blocks until the exclusive lock is granted.
func lockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
}

func unlockFile(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
