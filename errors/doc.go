// Package errors provides structured error types for the eztrans module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the library path, entry-point symbol,
// byte offset into offending text and a cause chain.
//
// The phases map onto the binding's failure taxonomy:
//
//	PhaseLoad       library not found, rejected by the loader, or held by another session
//	PhaseResolve    a required entry point is missing
//	PhaseEncode     text not representable as a NUL-terminated engine string
//	PhaseTranslate  the engine returned a null result (or lifecycle misuse)
//	PhaseInit       the initializer status was rejected (or lifecycle misuse)
//	PhaseTerminate  the terminator status was rejected
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindSymbolMissing).
//		Library(path).
//		Symbol("J2K_Terminate").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SymbolMissing(path, "J2K_Terminate", cause)
//	err := errors.Unencodable("Shift_JIS", '😀', 4)
//
// Match a whole category with the taxonomy targets:
//
//	if errors.IsEncoding(err) { ... }
//	if stderrors.Is(err, errors.ErrLoad) { ... }
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
