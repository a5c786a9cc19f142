package engine

import (
	stderrors "errors"
	"unsafe"

	"github.com/wippyai/eztrans"
	"github.com/wippyai/eztrans/errors"
)

// Exported entry-point names.
const (
	SymbolInitialize = "J2K_InitializeEx"
	SymbolTranslate  = "J2K_TranslateMMNT"
	SymbolTerminate  = "J2K_Terminate"
	// SymbolFreeMem is optional; when present it frees translate results.
	SymbolFreeMem = "J2K_FreeMem"
)

// SymbolNames lists the required entry points in resolution order.
var SymbolNames = []string{SymbolInitialize, SymbolTranslate, SymbolTerminate}

// Go shapes of the engine's C entry points.
type (
	InitializeFunc func(initStr, homeDir *byte) int32
	TranslateFunc  func(mode int32, input *byte) unsafe.Pointer
	TerminateFunc  func() int32
	FreeFunc       func(ptr unsafe.Pointer)
)

// EntryPoints holds the resolved engine functions.
// It borrows from the library it was resolved from and exposes no callables;
// Engine calls through it while the library is mapped.
type EntryPoints struct {
	initialize InitializeFunc
	translate  TranslateFunc
	terminate  TerminateFunc
	path       string
}

// Resolve binds all required entry points from lib.
// It returns a symbol error naming the first missing entry point and no table.
func Resolve(lib eztrans.Library) (*EntryPoints, error) {
	var eps EntryPoints

	bindings := []struct {
		fptr any
		name string
	}{
		{&eps.initialize, SymbolInitialize},
		{&eps.translate, SymbolTranslate},
		{&eps.terminate, SymbolTerminate},
	}

	for _, b := range bindings {
		if err := lib.Bind(b.name, b.fptr); err != nil {
			return nil, asSymbolError(lib.Path(), b.name, err)
		}
	}

	if eps.initialize == nil || eps.translate == nil || eps.terminate == nil {
		return nil, errors.InvalidInput(errors.PhaseResolve, "library bound a nil entry point")
	}

	eps.path = lib.Path()
	return &eps, nil
}

// Path returns the path of the library the table was resolved from.
func (e *EntryPoints) Path() string {
	return e.path
}

func asSymbolError(path, symbol string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Phase == errors.PhaseResolve {
		return err
	}
	return errors.SymbolMissing(path, symbol, err)
}
