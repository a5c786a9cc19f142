package engine

import (
	"runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/eztrans"
	"github.com/wippyai/eztrans/errors"
)

// Engine owns a mapped library, the entry points resolved from it and the
// allocator that frees translate results.
//
// Engine does not enforce the initialize/translate/terminate protocol; see
// runtime.Session for that. It is not safe for concurrent use.
type Engine struct {
	lib   eztrans.Library
	eps   *EntryPoints
	alloc eztrans.Allocator
	live  map[*ForeignString]struct{}
	path  string
}

// Open loads the library at path and resolves the engine from it.
// alloc may be nil to select the default allocator.
// No partially resolved engine is returned: on error the library is unmapped.
func Open(path string, alloc eztrans.Allocator) (*Engine, error) {
	lib, err := Load(path)
	if err != nil {
		return nil, err
	}

	eng, err := New(lib, alloc)
	if err != nil {
		if closeErr := lib.Close(); closeErr != nil {
			Logger().Warn("unmap after failed resolve",
				zap.String("path", path),
				zap.Error(closeErr))
		}
		return nil, err
	}
	return eng, nil
}

// New resolves the engine from lib and takes ownership of it.
// alloc may be nil, in which case J2K_FreeMem is used when lib exports it and
// the C runtime's free otherwise. On error lib stays open and owned by the
// caller.
func New(lib eztrans.Library, alloc eztrans.Allocator) (*Engine, error) {
	eps, err := Resolve(lib)
	if err != nil {
		return nil, err
	}

	if alloc == nil {
		alloc, err = defaultAllocator(lib)
		if err != nil {
			return nil, err
		}
	}

	Logger().Debug("engine resolved", zap.String("path", lib.Path()))
	return &Engine{
		lib:   lib,
		eps:   eps,
		alloc: alloc,
		path:  lib.Path(),
	}, nil
}

// Path returns the library path.
func (e *Engine) Path() string {
	return e.path
}

// Closed reports whether Close has run.
func (e *Engine) Closed() bool {
	return e.eps == nil
}

// Initialize calls J2K_InitializeEx. Both arguments must be NUL-terminated.
// The status is returned verbatim; its meaning is engine-defined.
func (e *Engine) Initialize(initStr, homeDir []byte) (int32, error) {
	if e.eps == nil {
		return 0, errors.Closed(e.path, SymbolInitialize)
	}
	if err := checkCString("init string", initStr); err != nil {
		return 0, err
	}
	if err := checkCString("home directory", homeDir); err != nil {
		return 0, err
	}

	status := e.eps.initialize(&initStr[0], &homeDir[0])
	runtime.KeepAlive(initStr)
	runtime.KeepAlive(homeDir)

	Logger().Debug("engine initialized",
		zap.String("path", e.path),
		zap.Int32("status", status))
	return status, nil
}

// Translate calls J2K_TranslateMMNT with a NUL-terminated input.
// A null result is a translation error and no ForeignString is created.
// The caller owns the returned string and must Release it.
func (e *Engine) Translate(mode int32, input []byte) (*ForeignString, error) {
	if e.eps == nil {
		return nil, errors.Closed(e.path, SymbolTranslate)
	}
	if err := checkCString("input", input); err != nil {
		return nil, err
	}

	ptr := e.eps.translate(mode, &input[0])
	runtime.KeepAlive(input)

	if ptr == nil {
		return nil, errors.NullResult(SymbolTranslate)
	}
	return newForeignString(ptr, e), nil
}

// Terminate calls J2K_Terminate and returns its status verbatim.
// Outstanding foreign strings are released first.
func (e *Engine) Terminate() (int32, error) {
	if e.eps == nil {
		return 0, errors.Closed(e.path, SymbolTerminate)
	}

	e.ReleaseAll()
	status := e.eps.terminate()

	Logger().Debug("engine terminated",
		zap.String("path", e.path),
		zap.Int32("status", status))
	return status, nil
}

// Outstanding returns the number of foreign strings not yet released.
func (e *Engine) Outstanding() int {
	return len(e.live)
}

// ReleaseAll releases every outstanding foreign string.
func (e *Engine) ReleaseAll() {
	for fs := range e.live {
		fs.Release()
	}
}

// Close releases outstanding foreign strings and unmaps the library.
// Entry points fail with a closed error afterwards. Callers terminate the
// engine before closing it. Calling Close again is a no-op.
func (e *Engine) Close() error {
	if e.eps == nil {
		return nil
	}

	e.ReleaseAll()
	e.eps = nil
	e.alloc = nil
	return e.lib.Close()
}

func (e *Engine) track(fs *ForeignString) {
	if e.live == nil {
		e.live = make(map[*ForeignString]struct{})
	}
	e.live[fs] = struct{}{}
}

func (e *Engine) untrack(fs *ForeignString) {
	delete(e.live, fs)
}

func (e *Engine) free(ptr unsafe.Pointer) {
	if e.alloc == nil {
		Logger().Warn("foreign string outlived its engine; not freed",
			zap.String("path", e.path))
		return
	}
	e.alloc.Free(ptr)
}

func checkCString(what string, b []byte) error {
	if len(b) == 0 || b[len(b)-1] != 0 {
		return errors.InvalidInput(errors.PhaseEngine, what+" is not NUL-terminated")
	}
	return nil
}
