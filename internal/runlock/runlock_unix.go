//go:build !windows

// Package runlock serializes ingestion rebuilds. A second rebuild racing
// the reset/rebuild sequence of the first could interleave deletions and
// insertions arbitrarily, so the load command takes this lock for the
// lifetime of a run.
package runlock

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// Acquire attempts to take an exclusive advisory lock on path.
//
// Returns:
//   - release: function to call when the run finishes (use with defer)
//   - ok: true if the lock was acquired, false if another run holds it
//   - err: error if something went wrong
func Acquire(path string) (release func(), ok bool, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, false, err
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, true, nil
}
