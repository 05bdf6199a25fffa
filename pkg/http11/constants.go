// Package http11 implements the wire-level HTTP/1.1 engine: preamble
// parsing, header storage, chunked/content-length body framing, and the
// per-connection state machine. It has no knowledge of routing, TLS
// certificate material, or metrics backends — those are supplied by the
// caller through small interfaces.
package http11

import "time"

// HTTP method IDs, assigned so a byte-length switch can classify a method
// without allocating or doing a map lookup.
const (
	MethodUnknown uint8 = iota
	MethodGET
	MethodHEAD
	MethodPOST
	MethodPUT
	MethodDELETE
	MethodCONNECT
	MethodOPTIONS
	MethodTRACE
	MethodPATCH
)

const (
	httpVersion11 = "HTTP/1.1"
	httpVersion10 = "HTTP/1.0"
)

// DefaultMaxPreambleBytes is the default ceiling on request-line + headers
// size. RFC 7230 recommends 8KB as a practical minimum; this engine defaults
// much higher so that large-but-legitimate header sets (auth tokens, trace
// context, cookies) don't need per-deployment tuning.
const DefaultMaxPreambleBytes = 128 * 1024

// DefaultMaxDrainBytes bounds how much of an unread request body the
// connection FSM will discard before giving up and closing the connection,
// when a handler doesn't read the whole body itself.
const DefaultMaxDrainBytes = 2 * 1024 * 1024

// DefaultClientTimeout is the read timeout of a connection. It is set as a
// read deadline once per request, when the connection starts reading the
// preamble, and later reads do not extend it: it bounds the wait for the
// request plus the reading of its preamble and of any body bytes, rather
// than the idle gap between two reads.
const DefaultClientTimeout = 20 * time.Second

const (
	crlf = "\r\n"
)
