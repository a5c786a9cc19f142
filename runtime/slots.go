package runtime

import (
	"context"
	"path/filepath"
	goruntime "runtime"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/wippyai/eztrans/errors"
)

// The engine keeps process-wide state, so each library path admits one live
// session at a time.
var slots = struct {
	m  map[string]*semaphore.Weighted
	mu sync.Mutex
}{m: make(map[string]*semaphore.Weighted)}

// slotKey names the file the loader will map for path, so aliases of one
// engine share a slot. A bare name is resolved by the platform search order
// and is keyed as given.
func slotKey(path string) string {
	if !strings.ContainsAny(path, `/\`) && !filepath.IsAbs(path) {
		return path
	}

	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(key); err == nil {
		key = resolved
	}
	if goruntime.GOOS == "windows" {
		key = strings.ToLower(key)
	}
	return key
}

func slotFor(path string) *semaphore.Weighted {
	key := slotKey(path)

	slots.mu.Lock()
	defer slots.mu.Unlock()

	sem, ok := slots.m[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		slots.m[key] = sem
	}
	return sem
}

// acquireSlot waits for the library's slot until ctx is done.
// The returned release func is safe to call more than once.
func acquireSlot(ctx context.Context, path string) (func(), error) {
	sem := slotFor(path)
	if !sem.TryAcquire(1) {
		Logger().Debug("waiting for engine slot")
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, errors.Busy(path, err)
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { sem.Release(1) })
	}, nil
}
