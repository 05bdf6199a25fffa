package http11

import (
	"bufio"
	"io"
	"strconv"

	"github.com/brinkhttp/brink/pkg/bufpool"
)

// bufferedBodyLimit is the largest response body the writer will buffer in
// memory to compute an exact Content-Length automatically. Bodies larger
// than this switch to chunked transfer encoding (or, on HTTP/1.0, a
// close-delimited body) instead of buffering the whole thing.
const bufferedBodyLimit = 256 * 1024

// ResponseWriter assembles an HTTP/1.1 response. Handlers that never call
// WriteHeader or set Content-Length explicitly get automatic framing: the
// body is buffered up to bufferedBodyLimit so its exact length can be sent
// as Content-Length, and only promoted to chunked encoding if the body
// turns out to be larger than that. A handler that sets Transfer-Encoding
// before its first Write streams chunked from the start without buffering.
type ResponseWriter struct {
	w    *bufio.Writer
	conn io.Writer

	header Header
	status int

	headRequest bool
	http10      bool

	headerWritten bool
	bodyStarted   bool
	chunked       bool
	chunkedWriter *chunkedWriter
	closeAfter    bool

	buf           *bufpool.Buffer
	explicitLen   bool
	declaredLen   int64
	bytesWritten  int64
	charsetWriter io.Writer
}

// newResponseWriter wraps w (the connection's buffered writer) for a single
// response. headRequest suppresses body bytes per RFC 7230 §3.3.3 while
// still computing headers as if a body were sent.
func newResponseWriter(w *bufio.Writer, headRequest, http10 bool) *ResponseWriter {
	rw := &ResponseWriter{
		w:           w,
		status:      200,
		headRequest: headRequest,
		http10:      http10,
	}
	rw.header.index = make(map[string][]int, 8)
	return rw
}

// reset prepares rw for reuse on the next request of a keep-alive
// connection.
func (rw *ResponseWriter) reset(w *bufio.Writer, headRequest, http10 bool) {
	rw.w = w
	rw.header.Reset()
	rw.status = 200
	rw.headRequest = headRequest
	rw.http10 = http10
	rw.headerWritten = false
	rw.bodyStarted = false
	rw.chunked = false
	rw.chunkedWriter = nil
	rw.closeAfter = false
	if rw.buf != nil {
		bufpool.Put(rw.buf)
		rw.buf = nil
	}
	rw.explicitLen = false
	rw.declaredLen = 0
	rw.bytesWritten = 0
	rw.charsetWriter = nil
}

// Header returns the response header store for mutation before the first
// Write or WriteHeader call.
func (rw *ResponseWriter) Header() *Header { return &rw.header }

// WriteHeader sets the status code. Calls made after the first Write, or
// after headers were flushed, have no effect, since headers can't be
// un-sent; before that, each call replaces the previously set status.
func (rw *ResponseWriter) WriteHeader(status int) {
	if rw.headerWritten || rw.bodyStarted {
		return
	}
	rw.status = status
}

// SetCloseAfter marks that the connection must close once this response is
// fully written, regardless of what headers the handler set. The
// connection FSM calls this when it has already decided to close (e.g.
// max-requests reached) so the client sees an honest Connection: close.
func (rw *ResponseWriter) SetCloseAfter() {
	rw.closeAfter = true
}

// Write buffers or streams body bytes depending on the framing mode chosen
// so far. The first Write (or WriteHeader) call, combined with whether the
// handler set an explicit Content-Length or Transfer-Encoding, decides the
// framing for the rest of the response.
func (rw *ResponseWriter) Write(p []byte) (int, error) {
	if !rw.bodyStarted {
		rw.bodyStarted = true
		if cl := rw.header.Get("Content-Length"); cl != "" {
			if n, err := strconv.ParseInt(cl, 10, 63); err == nil {
				rw.explicitLen = true
				rw.declaredLen = n
			}
		}
		if rw.header.Has("Transfer-Encoding") {
			rw.chunked = true
		}
		if !rw.explicitLen && !rw.chunked {
			rw.buf = bufpool.Get()
		}
		if rw.chunked {
			if err := rw.flushHeaders(); err != nil {
				return 0, err
			}
			rw.chunkedWriter = newChunkedWriter(rw.w)
		} else if rw.explicitLen {
			if err := rw.flushHeaders(); err != nil {
				return 0, err
			}
		}
	}

	if rw.explicitLen {
		rw.bytesWritten += int64(len(p))
		if rw.bytesWritten > rw.declaredLen {
			// Handler wrote more than it declared: truncate at the
			// declared length and force the connection closed, since
			// the client now has no reliable way to find the message
			// boundary (Open Question 3).
			over := rw.bytesWritten - rw.declaredLen
			keep := int64(len(p)) - over
			if keep > 0 {
				if _, err := rw.targetWriter().Write(p[:keep]); err != nil {
					return 0, err
				}
			}
			rw.closeAfter = true
			return len(p), nil
		}
		return rw.targetWriter().Write(p)
	}

	if rw.chunked {
		n, err := rw.chunkedWriter.Write(p)
		rw.bytesWritten += int64(n)
		return n, err
	}

	// Auto-framing: buffer until the limit, then spill over to chunked.
	if rw.buf.Len()+len(p) > bufferedBodyLimit {
		if err := rw.promoteToChunked(); err != nil {
			return 0, err
		}
		n, err := rw.chunkedWriter.Write(p)
		rw.bytesWritten += int64(n)
		return n, err
	}
	rw.buf.Write(p)
	rw.bytesWritten += int64(len(p))
	return len(p), nil
}

// targetWriter returns the writer body bytes should go to, applying any
// charset transcoding the handler configured via UseCharset.
func (rw *ResponseWriter) targetWriter() io.Writer {
	if rw.charsetWriter != nil {
		return rw.charsetWriter
	}
	return rw.w
}

// UseCharset wraps subsequent body writes with a transcoder into charset.
// Must be called before the first Write. The Content-Type header's charset
// parameter is left to the caller to set; this only changes the bytes.
func (rw *ResponseWriter) UseCharset(charset string) {
	rw.charsetWriter = newCharsetWriter(rw.w, charset)
}

// promoteToChunked is called when an auto-framed body exceeds the buffered
// limit: it flushes headers declaring chunked encoding, replays the
// buffered prefix as the first chunk, and switches subsequent writes to
// chunked mode.
func (rw *ResponseWriter) promoteToChunked() error {
	rw.chunked = true
	rw.header.Set("Transfer-Encoding", "chunked")
	rw.header.Del("Content-Length")
	if err := rw.flushHeaders(); err != nil {
		return err
	}
	rw.chunkedWriter = newChunkedWriter(rw.w)
	if rw.buf.Len() > 0 {
		if _, err := rw.chunkedWriter.Write(rw.buf.Bytes()); err != nil {
			return err
		}
	}
	bufpool.Put(rw.buf)
	rw.buf = nil
	return nil
}

// Flush finalizes the response: if the body was small enough to stay
// buffered, it sets Content-Length from the buffer's exact size and writes
// headers plus body now (the length is that of the body after any
// UseCharset transcoding); if already streaming (explicit length or
// chunked), it closes out the chunked trailer if needed, and marks the
// connection for close when fewer bytes than a declared Content-Length
// were written.
func (rw *ResponseWriter) Flush() error {
	if !rw.bodyStarted {
		// No body was ever written; treat as a zero-length response.
		rw.header.Set("Content-Length", "0")
		return rw.flushHeaders()
	}
	if rw.buf != nil {
		body := rw.buf.Bytes()
		if cw, ok := rw.charsetWriter.(*charsetWriter); ok {
			encoded, err := cw.enc.Bytes(body)
			if err != nil {
				return err
			}
			body = encoded
		}
		rw.header.Set("Content-Length", strconv.Itoa(len(body)))
		if err := rw.flushHeaders(); err != nil {
			return err
		}
		if !rw.headRequest {
			if _, err := rw.w.Write(body); err != nil {
				return err
			}
		}
		bufpool.Put(rw.buf)
		rw.buf = nil
		return rw.w.Flush()
	}
	if rw.chunked && rw.chunkedWriter != nil {
		if err := rw.chunkedWriter.Close(); err != nil {
			return err
		}
	}
	if rw.explicitLen && rw.bytesWritten < rw.declaredLen {
		rw.closeAfter = true
	}
	return rw.w.Flush()
}

func (rw *ResponseWriter) flushHeaders() error {
	if rw.headerWritten {
		return nil
	}
	rw.headerWritten = true

	// The server always echoes its keep-alive/close decision explicitly,
	// rather than leaving HTTP/1.1's keep-alive default implicit.
	if rw.closeAfter {
		rw.header.Set("Connection", "close")
	} else {
		rw.header.Set("Connection", "keep-alive")
	}
	if !rw.header.Has("Date") {
		rw.header.Set("Date", formatHTTPDate())
	}

	if _, err := rw.w.WriteString(statusLine(rw.status)); err != nil {
		return err
	}
	var werr error
	rw.header.VisitAll(func(name, value string) bool {
		if _, err := rw.w.WriteString(name); err != nil {
			werr = err
			return false
		}
		if _, err := rw.w.WriteString(": "); err != nil {
			werr = err
			return false
		}
		if _, err := rw.w.WriteString(value); err != nil {
			werr = err
			return false
		}
		_, werr = rw.w.WriteString(crlf)
		return werr == nil
	})
	if werr != nil {
		return werr
	}
	_, err := rw.w.WriteString(crlf)
	return err
}

// WillClose reports whether this response's framing has already decided
// the connection must close once it's fully written.
func (rw *ResponseWriter) WillClose() bool { return rw.closeAfter }

// Status returns the status code that will be (or was) sent.
func (rw *ResponseWriter) Status() int { return rw.status }

// BytesWritten returns the number of body bytes handed to Write so far.
func (rw *ResponseWriter) BytesWritten() int64 { return rw.bytesWritten }
