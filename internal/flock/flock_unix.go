//go:build unix

package flock

import "golang.org/x/sys/unix"

// Exclusive tries once to take an exclusive lock on fd. It fails with
// EWOULDBLOCK while another process holds the lock.
func Exclusive(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB)
}

// Unlock releases a lock taken with Exclusive.
func Unlock(fd uintptr) error {
	return unix.Flock(int(fd), unix.LOCK_UN)
}
