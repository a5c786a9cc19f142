package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad      Phase = "load"      // library mapping
	PhaseResolve   Phase = "resolve"   // entry-point lookup
	PhaseInit      Phase = "init"      // engine initialization
	PhaseEncode    Phase = "encode"    // Go text to engine bytes
	PhaseTranslate Phase = "translate" // translate call
	PhaseTerminate Phase = "terminate" // engine shutdown
	PhaseEngine    Phase = "engine"    // raw entry-point calls
	PhaseRuntime   Phase = "runtime"   // session bookkeeping
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindNotFound           Kind = "not_found"
	KindIncompatible       Kind = "incompatible"
	KindBusy               Kind = "busy"
	KindSymbolMissing      Kind = "symbol_missing"
	KindEmbeddedNul        Kind = "embedded_nul"
	KindUnencodable        Kind = "unencodable"
	KindInvalidUTF8        Kind = "invalid_utf8"
	KindNullResult         Kind = "null_result"
	KindStatus             Kind = "status"
	KindNotInitialized     Kind = "not_initialized"
	KindAlreadyInitialized Kind = "already_initialized"
	KindTerminated         Kind = "terminated"
	KindClosed             Kind = "closed"
	KindCanceled           Kind = "canceled"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Library string
	Symbol  string
	Detail  string
	Offset  int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Symbol != "" {
		b.WriteString(" symbol ")
		b.WriteString(e.Symbol)
	}

	if e.Library != "" {
		b.WriteString(" in ")
		b.WriteString(e.Library)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Kind matches any error of the same Phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Kind == "" {
			return e.Phase == t.Phase
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Library sets the library path
func (b *Builder) Library(path string) *Builder {
	b.err.Library = path
	return b
}

// Symbol sets the entry-point name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Offset sets the byte offset into the offending text
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Taxonomy targets for errors.Is. They match any Kind within their Phase,
// except ErrTranslation which matches only a null translate result.
// Lifecycle misuse in the translate phase is not a translation failure.
var (
	ErrLoad        = &Error{Phase: PhaseLoad}
	ErrSymbol      = &Error{Phase: PhaseResolve}
	ErrEncoding    = &Error{Phase: PhaseEncode}
	ErrTranslation = &Error{Phase: PhaseTranslate, Kind: KindNullResult}
	ErrTerminate   = &Error{Phase: PhaseTerminate}
)

// IsLoad reports whether err is a library load failure
func IsLoad(err error) bool {
	return stderrors.Is(err, ErrLoad)
}

// IsSymbol reports whether err is an entry-point resolution failure
func IsSymbol(err error) bool {
	return stderrors.Is(err, ErrSymbol)
}

// IsEncoding reports whether err is a text encoding failure
func IsEncoding(err error) bool {
	return stderrors.Is(err, ErrEncoding)
}

// IsTranslation reports whether err is a failed engine call: a null
// translate result or an initializer status the session rejected.
func IsTranslation(err error) bool {
	return stderrors.Is(err, ErrTranslation) || stderrors.Is(err, &Error{Phase: PhaseInit, Kind: KindStatus})
}

// Convenience constructors for common error patterns

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
		Offset: -1,
	}
}

// LibraryNotFound creates a load error for a missing library file
func LibraryNotFound(path string, cause error) *Error {
	return &Error{
		Phase:   PhaseLoad,
		Kind:    KindNotFound,
		Library: path,
		Cause:   cause,
		Offset:  -1,
	}
}

// Incompatible creates a load error for a file the platform loader rejected
func Incompatible(path string, cause error) *Error {
	return &Error{
		Phase:   PhaseLoad,
		Kind:    KindIncompatible,
		Library: path,
		Detail:  "platform loader rejected library",
		Cause:   cause,
		Offset:  -1,
	}
}

// Busy creates a load error for a library another session still holds
func Busy(path string, cause error) *Error {
	return &Error{
		Phase:   PhaseLoad,
		Kind:    KindBusy,
		Library: path,
		Detail:  "another session holds the engine",
		Cause:   cause,
		Offset:  -1,
	}
}

// SymbolMissing creates a resolution error naming the absent entry point
func SymbolMissing(path, symbol string, cause error) *Error {
	return &Error{
		Phase:   PhaseResolve,
		Kind:    KindSymbolMissing,
		Library: path,
		Symbol:  symbol,
		Cause:   cause,
		Offset:  -1,
	}
}

// EmbeddedNul creates an encoding error for text holding a NUL byte
func EmbeddedNul(what string, offset int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindEmbeddedNul,
		Detail: fmt.Sprintf("%s contains NUL at byte %d", what, offset),
		Offset: offset,
	}
}

// Unencodable creates an encoding error for a rune the target encoding lacks
func Unencodable(encoding string, r rune, offset int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindUnencodable,
		Detail: fmt.Sprintf("%U %q at byte %d has no %s representation", r, r, offset, encoding),
		Value:  r,
		Offset: offset,
	}
}

// InvalidUTF8 creates an encoding error for malformed Go text
func InvalidUTF8(data []byte, offset int) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidUTF8,
		Detail: fmt.Sprintf("invalid UTF-8 sequence at byte %d: %x", offset, preview),
		Offset: offset,
	}
}

// NullResult creates a translation error for a null engine result
func NullResult(symbol string) *Error {
	return &Error{
		Phase:  PhaseTranslate,
		Kind:   KindNullResult,
		Symbol: symbol,
		Detail: "engine returned a null pointer",
		Offset: -1,
	}
}

// Status creates an error for an engine status the session rejected
func Status(phase Phase, symbol string, status int32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindStatus,
		Symbol: symbol,
		Detail: fmt.Sprintf("engine returned status %d", status),
		Value:  status,
		Offset: -1,
	}
}

// NotInitialized creates an error for a call made before initialization
func NotInitialized(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: "session not initialized",
		Offset: -1,
	}
}

// AlreadyInitialized creates an error for a repeated initialization
func AlreadyInitialized() *Error {
	return &Error{
		Phase:  PhaseInit,
		Kind:   KindAlreadyInitialized,
		Detail: "session already initialized",
		Offset: -1,
	}
}

// Terminated creates an error for a call made after teardown began
func Terminated(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTerminated,
		Detail: "session terminated",
		Offset: -1,
	}
}

// Closed creates an error for an entry point used after its library was unmapped
func Closed(path, symbol string) *Error {
	return &Error{
		Phase:   PhaseEngine,
		Kind:    KindClosed,
		Library: path,
		Symbol:  symbol,
		Detail:  "library unmapped",
		Offset:  -1,
	}
}

// Canceled wraps a context error that stopped a call before it reached the engine
func Canceled(phase Phase, cause error) *Error {
	return &Error{
		Phase:  PhaseRuntime,
		Kind:   KindCanceled,
		Detail: fmt.Sprintf("%s skipped", phase),
		Cause:  cause,
		Offset: -1,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
		Offset: -1,
	}
}
