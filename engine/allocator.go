package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/eztrans"
	"github.com/wippyai/eztrans/errors"
)

var (
	crtOnce  sync.Once
	crtAlloc eztrans.Allocator
	crtErr   error
)

// CRuntimeAllocator returns an allocator that frees through the platform C
// runtime's free. The C runtime library stays mapped for the life of the
// process.
func CRuntimeAllocator() (eztrans.Allocator, error) {
	crtOnce.Do(func() {
		name := cRuntimeName()
		if name == "" {
			crtErr = errors.InvalidInput(errors.PhaseLoad, "no C runtime known for this platform")
			return
		}

		lib, err := Load(name)
		if err != nil {
			crtErr = err
			return
		}

		alloc, err := LibraryAllocator(lib, "free")
		if err != nil {
			_ = lib.Close()
			crtErr = err
			return
		}

		Logger().Debug("C runtime allocator bound", zap.String("library", name))
		crtAlloc = alloc
	})
	return crtAlloc, crtErr
}

// LibraryAllocator binds symbol, a void(void*) free function, from lib.
// The allocator borrows from lib and must not be used after lib is closed.
func LibraryAllocator(lib eztrans.Library, symbol string) (eztrans.Allocator, error) {
	var free FreeFunc
	if err := lib.Bind(symbol, &free); err != nil {
		return nil, asSymbolError(lib.Path(), symbol, err)
	}
	if free == nil {
		return nil, errors.SymbolMissing(lib.Path(), symbol, nil)
	}
	return eztrans.AllocatorFunc(free), nil
}

// defaultAllocator prefers the engine's own J2K_FreeMem and falls back to
// the C runtime.
func defaultAllocator(lib eztrans.Library) (eztrans.Allocator, error) {
	alloc, err := LibraryAllocator(lib, SymbolFreeMem)
	if err == nil {
		Logger().Debug("engine allocator bound",
			zap.String("path", lib.Path()),
			zap.String("symbol", SymbolFreeMem))
		return alloc, nil
	}
	return CRuntimeAllocator()
}
