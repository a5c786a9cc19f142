// Package engine provides the low-level binding to the native translation
// engine.
//
// It maps the engine's shared library, resolves its three entry points into
// typed Go functions and wraps engine-allocated result buffers so they are
// freed through the engine's allocator exactly once.
//
// # Architecture
//
// The engine package provides four main types:
//
//	SharedLibrary  - One mapping of a shared library (dlopen / LoadLibraryEx)
//	EntryPoints    - The resolved J2K_* functions, borrowed from a library
//	Engine         - Owns a library, its EntryPoints and the result allocator
//	ForeignString  - An engine-allocated, NUL-terminated result buffer
//
// # Load Flow
//
//  1. Load() maps the library file; a missing file or a loader rejection fails here
//  2. Resolve() binds all three entry points or none
//  3. New() picks the allocator: J2K_FreeMem when exported, else C runtime free
//  4. Engine methods call through the table until Close() unmaps the library
//
// # Ownership
//
// EntryPoints has no exported callables. Calls go through Engine, which
// refuses them with a [engine] closed error once Close has run, so a
// function pointer into an unmapped library is never called.
//
// A ForeignString's Bytes view points into engine memory and is valid only
// until Release. Release is idempotent, and Engine.ReleaseAll frees any
// buffers still outstanding, so a buffer cannot be freed twice or after
// its allocator was unmapped.
//
// # Signatures
//
// Symbol lookup is by name only. The binding trusts the declared signatures
// below; a library exporting these names with other signatures cannot be
// detected and calling it is undefined behavior.
//
//	J2K_InitializeEx   func(init, home *byte) int32
//	J2K_TranslateMMNT  func(mode int32, input *byte) unsafe.Pointer
//	J2K_Terminate      func() int32
//	J2K_FreeMem        func(ptr unsafe.Pointer)  (optional)
//
// # Platforms
//
// Linux, macOS and FreeBSD load and call through purego (no cgo required),
// which limits them to amd64 and arm64. Windows loads with LoadLibraryEx and
// calls through syscall.SyscallN, so windows/386 works. The stock engine DLL
// is a 32-bit binary and can only be mapped by a GOARCH=386 build; an amd64
// process needs a 64-bit engine build or an out-of-process bridge. Other
// targets compile, but Load fails with an incompatible error.
package engine
