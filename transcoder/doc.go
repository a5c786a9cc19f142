// Package transcoder converts text between Go strings and the byte
// encodings the translation engine speaks.
//
// The engine's contract fixes both encodings:
//
//	┌──────────────────────────────────────────────────────────────┐
//	│ Go string ─[Shift_JIS + NUL]→ engine ─[EUC-KR + NUL]→ string │
//	└──────────────────────────────────────────────────────────────┘
//
// # Encoding Input
//
// EncodeInput is strict. A rune with no Shift_JIS representation, malformed
// UTF-8, or an embedded NUL (which would truncate the C string) is an error
// carrying the byte offset of the offending rune. Silently replacing such
// characters would change the request sent to the engine.
//
// # Decoding Output
//
// DecodeOutput is lossy. Engine output is assumed to be well-formed EUC-KR;
// any byte sequence that is not is replaced with U+FFFD.
//
// # Pooling
//
// x/text transformers carry state between calls, so each conversion takes a
// transformer from a sync.Pool and returns it afterwards. A Bridge is safe
// for concurrent use.
package transcoder
