package transcoder

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/transform"

	"github.com/wippyai/eztrans/errors"
)

const (
	// InputEncoding is the encoding the engine expects on input.
	InputEncoding = "Shift_JIS"
	// OutputEncoding is the encoding the engine produces.
	OutputEncoding = "EUC-KR"
)

// Bridge converts Go text into engine input and engine output back into Go text.
type Bridge struct {
	pools *transformerPools
}

// NewBridge creates a bridge with its own transformer pools.
func NewBridge() *Bridge {
	return &Bridge{pools: newTransformerPools()}
}

var defaultBridge = NewBridge()

// Default returns the package-wide bridge.
func Default() *Bridge {
	return defaultBridge
}

// EncodeInput converts text to NUL-terminated Shift_JIS.
func EncodeInput(text string) ([]byte, error) {
	return defaultBridge.EncodeInput(text)
}

// DecodeOutput converts EUC-KR engine output to a Go string.
func DecodeOutput(b []byte) string {
	return defaultBridge.DecodeOutput(b)
}

// EncodeInput converts text to Shift_JIS and appends the terminating NUL.
// The returned slice is owned by the caller.
func (b *Bridge) EncodeInput(text string) ([]byte, error) {
	if i := strings.IndexByte(text, 0); i >= 0 {
		return nil, errors.EmbeddedNul("input text", i)
	}
	if !utf8.ValidString(text) {
		off := firstInvalidUTF8(text)
		return nil, errors.InvalidUTF8([]byte(text[off:]), off)
	}

	enc := b.pools.getEncoder()
	defer b.pools.putEncoder(enc)

	// Shift_JIS never needs more bytes than UTF-8 for the same text.
	dst := make([]byte, 0, len(text)+1)
	dst, _, err := transform.Append(enc, dst, []byte(text))
	if err != nil {
		return nil, b.locateUnencodable(text, err)
	}

	return append(dst, 0), nil
}

// DecodeOutput converts EUC-KR bytes to a Go string. b must not include the
// terminating NUL. Invalid sequences become U+FFFD.
func (b *Bridge) DecodeOutput(out []byte) string {
	if len(out) == 0 {
		return ""
	}

	dec := b.pools.getDecoder()
	defer b.pools.putDecoder(dec)

	res, err := dec.Bytes(out)
	if err != nil {
		// EUC-KR decoding replaces bad input instead of failing; keep what
		// decoded and mark the remainder.
		return string(res) + string(utf8.RuneError)
	}
	return string(res)
}

// locateUnencodable finds the first rune of text the encoder rejects.
func (b *Bridge) locateUnencodable(text string, cause error) error {
	enc := b.pools.getEncoder()
	defer b.pools.putEncoder(enc)

	var buf [utf8.UTFMax]byte
	for off, r := range text {
		n := utf8.EncodeRune(buf[:], r)
		if _, err := enc.Bytes(buf[:n]); err != nil {
			e := errors.Unencodable(InputEncoding, r, off)
			e.Cause = err
			return e
		}
	}

	return errors.Wrap(errors.PhaseEncode, errors.KindUnencodable, cause, "encode to "+InputEncoding)
}

func firstInvalidUTF8(s string) int {
	for off, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[off:]); size == 1 {
				return off
			}
		}
	}
	return len(s)
}

// CString returns s as a NUL-terminated byte string without re-encoding.
// what names the value in the error when s holds an embedded NUL.
func CString(what, s string) ([]byte, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, errors.EmbeddedNul(what, i)
	}
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return buf, nil
}
