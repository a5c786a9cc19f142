package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/eztrans/errors"
)

// SharedLibrary is one mapping of a platform shared library.
type SharedLibrary struct {
	path   string
	handle uintptr
}

// Load maps the shared library at path.
// Each call allocates a new OS handle, even for a path that is already loaded.
// A path without a directory component is left to the platform search order.
func Load(path string) (*SharedLibrary, error) {
	if path == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "library path is empty")
	}

	if hasDir(path) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.LibraryNotFound(path, err)
		}
	}

	handle, err := openLibrary(path)
	if err != nil {
		return nil, errors.Incompatible(path, err)
	}
	if handle == 0 {
		return nil, errors.Incompatible(path, fmt.Errorf("loader returned a nil handle"))
	}

	Logger().Debug("library loaded", zap.String("path", path))
	return &SharedLibrary{path: path, handle: handle}, nil
}

func hasDir(path string) bool {
	return filepath.IsAbs(path) || strings.ContainsAny(path, `/\`)
}

// Path returns the file the library was loaded from.
func (l *SharedLibrary) Path() string {
	return l.path
}

// Handle returns the underlying OS handle.
// It is zero after Close.
func (l *SharedLibrary) Handle() uintptr {
	return l.handle
}

// Bind resolves symbol and binds it into fptr, a pointer to a func variable.
func (l *SharedLibrary) Bind(symbol string, fptr any) (err error) {
	if l.handle == 0 {
		return errors.Closed(l.path, symbol)
	}

	addr, err := lookupSymbol(l.handle, symbol)
	if err != nil {
		return errors.SymbolMissing(l.path, symbol, err)
	}
	if addr == 0 {
		return errors.SymbolMissing(l.path, symbol, nil)
	}

	// purego panics instead of returning an error for unsupported func types.
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.PhaseResolve, errors.KindInvalidInput).
				Library(l.path).
				Symbol(symbol).
				Detail("cannot bind into %T: %v", fptr, r).
				Build()
		}
	}()

	if err := registerFunc(fptr, addr); err != nil {
		return errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err, "bind "+symbol)
	}

	Logger().Debug("symbol bound",
		zap.String("path", l.path),
		zap.String("symbol", symbol))
	return nil
}

// Close unmaps the library. Calling Close again is a no-op.
func (l *SharedLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}

	handle := l.handle
	l.handle = 0
	if err := closeLibrary(handle); err != nil {
		return errors.Wrap(errors.PhaseEngine, errors.KindClosed, err, "unmap "+l.path)
	}

	Logger().Debug("library unmapped", zap.String("path", l.path))
	return nil
}
