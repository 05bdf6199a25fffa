package http11

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

const defaultMaxChunkSize = 16 * 1024 * 1024

// chunkedReader decodes an HTTP/1.1 chunked transfer-coded body, adapted
// from the teacher's ChunkedReader. Differences from the teacher version:
// trailers are parsed and appended to the owning request's Header instead
// of being silently discarded, and the total body size cap is a
// constructor argument instead of a fixed constant. The parser passes
// DefaultMaxDrainBytes; a connection's MaxDrainBytes setting does not
// reach it.
type chunkedReader struct {
	r              *bufio.Reader
	bytesRemaining uint64
	err            error
	eof            bool
	maxChunkSize   uint64
	maxBodySize    uint64
	totalRead      uint64

	// trailerDest receives parsed trailer fields once the terminating
	// chunk and trailer section have been read. May be nil.
	trailerDest *Header
}

func newChunkedReader(r *bufio.Reader, maxBodySize uint64, dest *Header) *chunkedReader {
	return &chunkedReader{
		r:            r,
		maxChunkSize: defaultMaxChunkSize,
		maxBodySize:  maxBodySize,
		trailerDest:  dest,
	}
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	for c.bytesRemaining == 0 && !c.eof {
		if err := c.readChunkHeader(); err != nil {
			c.err = err
			return 0, err
		}
		if c.bytesRemaining == 0 {
			c.eof = true
			if err := c.readTrailers(); err != nil {
				c.err = err
				return 0, err
			}
		}
	}
	if c.eof {
		c.err = io.EOF
		return 0, io.EOF
	}
	if uint64(len(p)) > c.bytesRemaining {
		p = p[:c.bytesRemaining]
	}
	n, err := c.r.Read(p)
	c.bytesRemaining -= uint64(n)
	c.totalRead += uint64(n)
	if c.maxBodySize > 0 && c.totalRead > c.maxBodySize {
		c.err = ErrDrainLimitExceeded
		return n, c.err
	}
	if err != nil && err != io.EOF {
		c.err = err
		return n, err
	}
	if c.bytesRemaining == 0 {
		if err := c.readCRLF(); err != nil {
			c.err = err
			return n, err
		}
	}
	return n, nil
}

func (c *chunkedReader) readChunkHeader() error {
	line, err := c.r.ReadSlice('\n')
	if err != nil {
		if err == io.EOF {
			return malformed("chunk header truncated", ErrChunkedEncoding)
		}
		return err
	}
	line = bytes.TrimRight(line, "\r\n")
	if semi := bytes.IndexByte(line, ';'); semi >= 0 {
		// Chunk extensions are ignored entirely rather than interpreted:
		// a parser that acts on them is a smuggling vector.
		line = line[:semi]
	}
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return malformed("empty chunk size line", ErrChunkedEncoding)
	}
	size, err := strconv.ParseUint(string(line), 16, 64)
	if err != nil {
		return malformed("invalid chunk size", ErrChunkedEncoding)
	}
	if size > c.maxChunkSize {
		return malformed("chunk exceeds maximum size", ErrChunkedEncoding)
	}
	c.bytesRemaining = size
	return nil
}

func (c *chunkedReader) readCRLF() error {
	var buf [2]byte
	if _, err := io.ReadFull(c.r, buf[:]); err != nil {
		return malformed("missing chunk trailing CRLF", ErrChunkedEncoding)
	}
	if buf[0] != '\r' || buf[1] != '\n' {
		return malformed("malformed chunk trailing CRLF", ErrChunkedEncoding)
	}
	return nil
}

// readTrailers reads the zero or more trailer header lines following the
// terminating 0-size chunk, up to the final blank line, appending each to
// trailerDest if present (Open Question 2: trailers are appended to the
// request's header set rather than discarded or exposed separately, so a
// handler sees them exactly like any other header once the body has been
// fully read).
func (c *chunkedReader) readTrailers() error {
	for {
		line, err := c.r.ReadSlice('\n')
		if err != nil {
			return malformed("trailer section truncated", ErrChunkedEncoding)
		}
		trimmed := bytes.TrimRight(line, "\r\n")
		if len(trimmed) == 0 {
			return nil
		}
		colon := bytes.IndexByte(trimmed, ':')
		if colon <= 0 {
			return malformed("malformed trailer field", ErrChunkedEncoding)
		}
		name := string(bytes.TrimSpace(trimmed[:colon]))
		value := string(bytes.TrimSpace(trimmed[colon+1:]))
		if c.trailerDest != nil {
			c.trailerDest.Add(name, value)
		}
	}
}

// chunkedWriter encodes outgoing writes as HTTP/1.1 chunks. Close must be
// called to emit the terminating zero-size chunk.
type chunkedWriter struct {
	w      io.Writer
	closed bool
}

func newChunkedWriter(w io.Writer) *chunkedWriter {
	return &chunkedWriter{w: w}
}

func (cw *chunkedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := io.WriteString(cw.w, strconv.FormatInt(int64(len(p)), 16)+crlf); err != nil {
		return 0, err
	}
	if _, err := cw.w.Write(p); err != nil {
		return 0, err
	}
	if _, err := io.WriteString(cw.w, crlf); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (cw *chunkedWriter) Close() error {
	if cw.closed {
		return nil
	}
	cw.closed = true
	_, err := io.WriteString(cw.w, "0"+crlf+crlf)
	return err
}
