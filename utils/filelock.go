package utils

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/pkg/errors"
)

// ErrLockHeld is returned by AcquireAdminLock when another process
// already holds the exclusive lock (§5: "attempting a second
// concurrent transaction fails fast with a lock-held error").
var ErrLockHeld = errors.New("utils: admin directory lock is held by another process")

// AdminLock is the cross-process exclusive advisory lock on
// <admin>/lock (§5) that serializes transactions against a given
// admin directory. Unlike LockFile/LockFiles below, which only
// synchronize goroutines within this process, AdminLock uses
// syscall.Flock so a second wpkg invocation against the same admin
// directory fails fast instead of blocking or corrupting state.
type AdminLock struct {
	file *os.File
}

// AcquireAdminLock opens (creating if necessary) path and takes a
// non-blocking exclusive flock on it. It fails immediately with
// ErrLockHeld if another process holds the lock.
func AcquireAdminLock(path string) (*AdminLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "utils: opening lock file %s", path)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
			return nil, ErrLockHeld
		}
		return nil, errors.Wrapf(err, "utils: locking %s", path)
	}

	return &AdminLock{file: f}, nil
}

// Release drops the flock and closes the lock file. The lock file
// itself is left in place so the next AcquireAdminLock can reopen it.
func (l *AdminLock) Release() error {
	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return errors.Wrap(err, "utils: unlocking")
	}
	return l.file.Close()
}

// FileLockRegistry manages file-level locks to prevent concurrent access
type FileLockRegistry struct {
	locks map[string]*sync.Mutex
	mu    sync.Mutex
}

// Global file lock registry
var fileLocks = &FileLockRegistry{
	locks: make(map[string]*sync.Mutex),
}

// LockFile acquires a lock for the given file path and returns an unlock function
func LockFile(path string) func() {
	// Normalize path to absolute to ensure consistency
	absPath, err := filepath.Abs(path)
	if err != nil {
		// If we can't get absolute path, use the original
		absPath = path
	}
	
	fileLocks.mu.Lock()
	lock, exists := fileLocks.locks[absPath]
	if !exists {
		lock = &sync.Mutex{}
		fileLocks.locks[absPath] = lock
	}
	fileLocks.mu.Unlock()
	
	lock.Lock()
	return func() { lock.Unlock() }
}

// LockFiles acquires locks for multiple file paths and returns an unlock function
func LockFiles(paths []string) func() {
	// Sort paths to prevent deadlock when locking multiple files
	normalizedPaths := make([]string, 0, len(paths))
	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}
		normalizedPaths = append(normalizedPaths, absPath)
	}
	
	// Simple sorting to ensure consistent lock order
	for i := 0; i < len(normalizedPaths)-1; i++ {
		for j := i + 1; j < len(normalizedPaths); j++ {
			if normalizedPaths[i] > normalizedPaths[j] {
				normalizedPaths[i], normalizedPaths[j] = normalizedPaths[j], normalizedPaths[i]
			}
		}
	}
	
	// Acquire all locks
	unlocks := make([]func(), 0, len(normalizedPaths))
	for _, path := range normalizedPaths {
		unlock := LockFile(path)
		unlocks = append(unlocks, unlock)
	}
	
	// Return function that unlocks all in reverse order
	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}