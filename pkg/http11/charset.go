package http11

import (
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// lookupCharset resolves a charset name (as it appears in a Content-Type
// charset parameter) to a golang.org/x/text encoding. utf-8 and its aliases
// are handled directly since they're the overwhelmingly common case and
// need no transcoding; everything else goes through htmlindex, which covers
// the WHATWG encoding registry (the same table browsers use to resolve
// declared charsets), with the UTF-16 variants routed to the unicode
// package explicitly so BOM handling is fixed: utf-16le and utf-16be encode
// without a BOM in the named byte order, while a bare utf-16 encodes
// little-endian with a leading BOM so a decoder can detect the byte order.
func lookupCharset(name string) (encoding.Encoding, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "us-ascii", "ascii":
		return encoding.Nop, true
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), true
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), true
	case "utf-16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), true
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, false
	}
	return enc, true
}

// EncodeString transcodes s from UTF-8 into the named charset, returning
// the exact output bytes. Response framing needs the byte-accurate length
// up front (to set Content-Length before writing), so this always encodes
// fully in memory rather than streaming.
func EncodeString(s, charset string) ([]byte, error) {
	enc, ok := lookupCharset(charset)
	if !ok {
		return nil, malformed("unknown charset", ErrHeaderBad)
	}
	if enc == encoding.Nop {
		return []byte(s), nil
	}
	return enc.NewEncoder().Bytes([]byte(s))
}

// charsetWriter wraps w, transcoding every Write from UTF-8 into the target
// charset before forwarding. Used when a handler streams a declared-charset
// body rather than handing over a precomputed string.
type charsetWriter struct {
	w   io.Writer
	enc *encoding.Encoder
}

// newCharsetWriter returns a writer that transcodes into charset, or w
// itself (wrapped trivially) if charset is UTF-8 or unrecognized.
func newCharsetWriter(w io.Writer, charset string) io.Writer {
	enc, ok := lookupCharset(charset)
	if !ok || enc == encoding.Nop {
		return w
	}
	return &charsetWriter{w: w, enc: enc.NewEncoder()}
}

func (cw *charsetWriter) Write(p []byte) (int, error) {
	out, err := cw.enc.Bytes(p)
	if err != nil {
		return 0, err
	}
	if _, err := cw.w.Write(out); err != nil {
		return 0, err
	}
	return len(p), nil
}

// decodeFormCharset decodes a request body (or query string) given the
// request's declared Content-Type charset before it's handed to
// url.ParseQuery, which otherwise assumes UTF-8.
func decodeFormCharset(body []byte, r *Request) string {
	cs, ok := r.ContentCharset()
	if !ok {
		return string(body)
	}
	enc, ok := lookupCharset(cs)
	if !ok || enc == encoding.Nop {
		return string(body)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(out)
}
