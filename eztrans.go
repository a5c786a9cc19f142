package eztrans

import "unsafe"

// Library is a mapped shared library whose exported symbols can be bound
// to Go function variables.
type Library interface {
	// Path returns the file the library was loaded from.
	Path() string
	// Bind resolves symbol and stores a callable for it into fptr, which
	// must be a pointer to a func variable. The declared func type is
	// trusted; a mismatch with the exported signature is undefined behavior.
	Bind(symbol string, fptr any) error
	// Close unmaps the library. Functions bound from it must not be
	// called afterwards.
	Close() error
}

// Allocator releases memory allocated by the engine.
type Allocator interface {
	Free(ptr unsafe.Pointer)
}

// AllocatorFunc adapts a plain function to Allocator.
type AllocatorFunc func(ptr unsafe.Pointer)

// Free calls f(ptr).
func (f AllocatorFunc) Free(ptr unsafe.Pointer) {
	f(ptr)
}
