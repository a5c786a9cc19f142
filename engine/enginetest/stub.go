// Package enginetest provides an in-process stand-in for the native engine.
//
// A Stub implements eztrans.Library with Go functions in place of the
// library's exports, allocates translate results in memory it tracks and
// counts every call, so tests can assert the binding's lifecycle and
// ownership rules without a real shared library.
//
//	stub := enginetest.New(t.Name())
//	stub.Reply = enginetest.Fixed([]byte{0xB0, 0xA1})
//	eng, err := engine.New(stub, nil)
package enginetest

import (
	"bytes"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/wippyai/eztrans"
	"github.com/wippyai/eztrans/engine"
	"github.com/wippyai/eztrans/errors"
)

// ReplyFunc produces the translate result for input (without its NUL).
// Returning nil makes the stub return a null pointer.
type ReplyFunc func(mode int32, input []byte) []byte

// Echo returns the input unchanged.
func Echo(_ int32, input []byte) []byte {
	return bytes.Clone(input)
}

// Null always returns a null result.
func Null(int32, []byte) []byte {
	return nil
}

// Fixed always returns out.
func Fixed(out []byte) ReplyFunc {
	return func(int32, []byte) []byte {
		return bytes.Clone(out)
	}
}

// Stub is a fake engine library.
type Stub struct {
	// Reply computes translate results. Defaults to Echo.
	Reply ReplyFunc
	// Missing lists exports the stub pretends not to have.
	Missing []string
	// InitStatus and TerminateStatus are returned by the entry points.
	InitStatus      int32
	TerminateStatus int32

	InitCalls      atomic.Int32
	TranslateCalls atomic.Int32
	TerminateCalls atomic.Int32
	Allocs         atomic.Int32
	Frees          atomic.Int32
	BadFrees       atomic.Int32
	Closes         atomic.Int32
	// CallsAfterClose counts entry-point calls made after Close, which
	// would be calls into an unmapped library.
	CallsAfterClose atomic.Int32

	live      map[unsafe.Pointer][]byte
	path      string
	lastInit  string
	lastHome  string
	lastInput []byte
	lastMode  int32
	mu        sync.Mutex
	closed    bool
}

// New creates a stub that reports path as its library path.
// Initialize and terminate succeed (status 1) and translate echoes.
func New(path string) *Stub {
	return &Stub{
		Reply:           Echo,
		InitStatus:      1,
		TerminateStatus: 1,
		live:            make(map[unsafe.Pointer][]byte),
		path:            path,
	}
}

// Path implements eztrans.Library.
func (s *Stub) Path() string {
	return s.path
}

// Bind implements eztrans.Library by assigning the stub's Go function for
// symbol into fptr. Unlike a real library it rejects mismatched signatures.
func (s *Stub) Bind(symbol string, fptr any) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.Closed(s.path, symbol)
	}

	fn, ok := s.exports()[symbol]
	if !ok {
		return errors.SymbolMissing(s.path, symbol, nil)
	}

	dst := reflect.ValueOf(fptr)
	if dst.Kind() != reflect.Pointer || dst.Elem().Kind() != reflect.Func {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Library(s.path).
			Symbol(symbol).
			Detail("cannot bind into %T", fptr).
			Build()
	}

	src := reflect.ValueOf(fn)
	if !src.Type().AssignableTo(dst.Elem().Type()) {
		return errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Library(s.path).
			Symbol(symbol).
			Detail("signature %s does not match %s", src.Type(), dst.Elem().Type()).
			Build()
	}

	dst.Elem().Set(src)
	return nil
}

// Close implements eztrans.Library.
func (s *Stub) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.Closes.Add(1)
	return nil
}

// Allocator returns the stub's free function as an allocator.
func (s *Stub) Allocator() eztrans.Allocator {
	return eztrans.AllocatorFunc(s.free)
}

// Live returns the number of translate results not yet freed.
func (s *Stub) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// LastInit returns the arguments of the most recent initialize call.
func (s *Stub) LastInit() (initStr, homeDir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastInit, s.lastHome
}

// LastTranslate returns the mode and raw input of the most recent translate call.
func (s *Stub) LastTranslate() (mode int32, input []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMode, s.lastInput
}

func (s *Stub) exports() map[string]any {
	exports := map[string]any{
		engine.SymbolInitialize: engine.InitializeFunc(s.initialize),
		engine.SymbolTranslate:  engine.TranslateFunc(s.translate),
		engine.SymbolTerminate:  engine.TerminateFunc(s.terminate),
		engine.SymbolFreeMem:    engine.FreeFunc(s.free),
	}
	for _, name := range s.Missing {
		delete(exports, name)
	}
	return exports
}

func (s *Stub) checkOpen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.CallsAfterClose.Add(1)
	}
}

func (s *Stub) initialize(initStr, homeDir *byte) int32 {
	s.checkOpen()
	s.InitCalls.Add(1)

	s.mu.Lock()
	s.lastInit = string(engine.CStringView(unsafe.Pointer(initStr)))
	s.lastHome = string(engine.CStringView(unsafe.Pointer(homeDir)))
	s.mu.Unlock()

	return s.InitStatus
}

func (s *Stub) translate(mode int32, input *byte) unsafe.Pointer {
	s.checkOpen()
	s.TranslateCalls.Add(1)

	in := bytes.Clone(engine.CStringView(unsafe.Pointer(input)))

	s.mu.Lock()
	s.lastMode = mode
	s.lastInput = in
	s.mu.Unlock()

	out := s.Reply(mode, in)
	if out == nil {
		return nil
	}

	buf := make([]byte, len(out)+1)
	copy(buf, out)
	ptr := unsafe.Pointer(&buf[0])

	s.mu.Lock()
	s.live[ptr] = buf
	s.mu.Unlock()
	s.Allocs.Add(1)

	return ptr
}

func (s *Stub) terminate() int32 {
	s.checkOpen()
	s.TerminateCalls.Add(1)
	return s.TerminateStatus
}

func (s *Stub) free(ptr unsafe.Pointer) {
	s.Frees.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live[ptr]; !ok {
		s.BadFrees.Add(1)
		return
	}
	delete(s.live, ptr)
}
