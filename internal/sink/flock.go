package sink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	lockSuffix      = ".lock"
	defaultLockWait = 10 * time.Second
)

// acquireLock takes an exclusive advisory lock on a sidecar lock file,
// polling non-blockingly with exponential backoff up to maxWait. Polling
// instead of a blocking flock keeps a wedged peer from parking this hook
// past its budget. Returns the handle; pass it to releaseLock when done.
func acquireLock(path string, maxWait time.Duration) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // G304: lockPath derived from the resolved fallback path
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = maxWait
	b.RandomizationFactor = 0.1

	err = backoff.Retry(func() error {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return nil
		}
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return err // held by a peer, poll again
		}
		return backoff.Permanent(err)
	}, b)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	return f, nil
}

// releaseLock releases the advisory lock and closes the file. Nil-safe.
func releaseLock(f *os.File) {
	if f == nil {
		return
	}
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	_ = f.Close()
}
