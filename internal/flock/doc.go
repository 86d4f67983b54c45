// Package flock provides cross-platform file locking utilities.
//
// Acquire retries a non-blocking exclusive lock (flock on Unix, LockFileEx on
// Windows) until a timeout, so two minutes processes rewriting the same
// history file take turns.
//
// Usage:
//
//	lock, err := flock.Acquire(ctx, path+".lock", constants.LockTimeout)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = flock.Release(lock) }()
//
// Import rules:
//   - CAN import: internal/ctxutil, internal/errors, std lib, golang.org/x/sys
package flock
