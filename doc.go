// Package eztrans binds Go programs to a closed-source, dynamically loaded
// Japanese-to-Korean translation engine.
//
// The engine ships as a platform shared library exporting three C entry
// points. This module loads the library, resolves and holds those entry
// points for as long as the library stays mapped, drives the engine's
// initialize/translate/terminate lifecycle and converts text between Go
// strings and the legacy byte encodings the engine speaks.
//
// # Architecture Overview
//
//	eztrans/             Root package with the Library and Allocator interfaces
//	├── runtime/         High-level Session API (lifecycle, tracing, exclusivity)
//	├── engine/          Library loading, entry-point table, foreign strings
//	├── transcoder/      Shift_JIS input and EUC-KR output encoding bridge
//	├── errors/          Structured error types
//	└── cmd/eztrans/     Command-line translator with an interactive mode
//
// # Quick Start
//
//	ctx := context.Background()
//	sess, err := runtime.Load(ctx, "/opt/ezTrans/J2KEngine.dll")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close(ctx)
//
//	if _, err := sess.Initialize(ctx, "CSUSER123455", "/opt/ezTrans/Dat"); err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := sess.Translate(ctx, "おはようございます")
//	fmt.Println(out)
//
// # Entry Points
//
//	J2K_InitializeEx(const char* init, const char* home) -> int
//	J2K_TranslateMMNT(int mode, const char* sjis)       -> char* (engine-owned)
//	J2K_Terminate()                                     -> int
//
// The binding trusts these declared signatures. A library exporting the same
// names with different signatures cannot be detected and results in
// undefined behavior.
//
// # Thread Safety
//
// The engine keeps process-wide state that is not documented as thread-safe.
// A Session is NOT safe for concurrent use and performs no internal locking;
// callers sharing one must synchronize externally. Only one Session per
// library path can be live in a process at a time.
//
// # Memory Model
//
// Buffers returned by the engine are allocated by the engine's allocator and
// must be released through it, never through Go. Translated text is copied
// into a Go string before the foreign buffer is freed.
//
// # Platforms
//
// A process can only map libraries built for its own architecture. The stock
// J2KEngine.dll is 32-bit, so it needs a windows/386 build:
//
//	GOOS=windows GOARCH=386 go build ./cmd/eztrans
//
// Windows amd64 and arm64 work with a matching engine build. Linux, macOS and
// FreeBSD are supported on amd64 and arm64 only; anywhere else Load returns
// an incompatible error.
package eztrans
