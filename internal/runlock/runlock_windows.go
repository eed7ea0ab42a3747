//go:build windows

// Package runlock serializes ingestion rebuilds. A second rebuild racing
// the reset/rebuild sequence of the first could interleave deletions and
// insertions arbitrarily, so the load command takes this lock for the
// lifetime of a run.
package runlock

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

// Acquire attempts to take a named mutex derived from path.
//
// Returns:
//   - release: function to call when the run finishes (use with defer)
//   - ok: true if the lock was acquired, false if another run holds it
//   - err: error if something went wrong
func Acquire(path string) (release func(), ok bool, err error) {
	name, err := windows.UTF16PtrFromString(`Local\tropimon-stats-` + filepath.Base(path))
	if err != nil {
		return nil, false, err
	}

	h, err := windows.CreateMutex(nil, false, name)
	if err != nil {
		if err == windows.ERROR_ALREADY_EXISTS {
			if h != 0 {
				windows.CloseHandle(h)
			}
			return nil, false, nil
		}
		return nil, false, err
	}

	return func() {
		windows.CloseHandle(h)
	}, true, nil
}
