package session

import "os"

// LockFileName is the advisory lock file inside the planner directory.
const LockFileName = ".lock"

const lockFileMode = 0o600

// acquireLock takes an exclusive advisory lock on the file at path,
// creating it if it does not exist. The returned function releases the
// lock and must be called when the critical section is done.
//
// Only one process can hold the lock at a time; other callers block
// until the lock is available.
func acquireLock(path string) (release func() error, err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, lockFileMode) //nolint:gosec // lock file path from trusted planner dir
	if err != nil {
		return nil, err
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		unlockErr := unlockFile(f)
		closeErr := f.Close()
		if unlockErr != nil {
			return unlockErr
		}
		return closeErr
	}, nil
}
