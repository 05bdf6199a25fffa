package http11

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync/atomic"
	"time"
)

// ConnState is one state of the per-connection finite state machine.
type ConnState int32

const (
	StateNew ConnState = iota
	StateReadingPreamble
	StateDispatching
	StateWritingResponse
	StateWritingError
	StateDrainingBody
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateReadingPreamble:
		return "READING_PREAMBLE"
	case StateDispatching:
		return "DISPATCHING"
	case StateWritingResponse:
		return "WRITING_RESPONSE"
	case StateWritingError:
		return "WRITING_ERROR"
	case StateDrainingBody:
		return "DRAINING_BODY"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Handler processes one parsed request and writes a response. Returning an
// error causes the connection to close after any response already flushed,
// or to send a 500 if no bytes have reached the wire yet; a handler that
// panics instead of returning an error is recovered and treated the same
// way, for implementations that reach for exceptions instead of explicit
// error returns.
type Handler func(req *Request, rw *ResponseWriter) error

// Instrumenter receives connection and request lifecycle events. All
// methods must be safe for concurrent use and must not block meaningfully,
// since they're called from the hot path.
type Instrumenter interface {
	ConnectionAccepted()
	ConnectionClosed()
	RequestServed(status int, bytesWritten int64, dur time.Duration)
	BadRequest(err error)
	ChunkedRequest()
	ChunkedResponse()
}

// NoopInstrumenter discards every event. It's the default when a Config
// doesn't supply one.
type NoopInstrumenter struct{}

func (NoopInstrumenter) ConnectionAccepted()                     {}
func (NoopInstrumenter) ConnectionClosed()                       {}
func (NoopInstrumenter) RequestServed(int, int64, time.Duration) {}
func (NoopInstrumenter) BadRequest(error)                        {}
func (NoopInstrumenter) ChunkedRequest()                         {}
func (NoopInstrumenter) ChunkedResponse()                        {}

// ConnectionConfig tunes a single Connection's behavior.
type ConnectionConfig struct {
	ReadBufferSize   int
	WriteBufferSize  int
	MaxPreambleBytes int
	MaxDrainBytes    int64
	MaxRequests      int32 // 0 means unlimited
	ClientTimeout    time.Duration
	Instrumenter     Instrumenter
}

// DefaultConnectionConfig returns the configuration used when a caller
// doesn't override it.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
		MaxPreambleBytes: DefaultMaxPreambleBytes,
		MaxDrainBytes:    DefaultMaxDrainBytes,
		ClientTimeout:    DefaultClientTimeout,
		Instrumenter:     NoopInstrumenter{},
	}
}

// Connection drives the request/response cycle for one accepted net.Conn,
// including keep-alive reuse, malformed-preamble resynchronization, idle
// timeouts, and body draining between requests.
type Connection struct {
	state atomic.Int32

	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	parser  *Parser
	handler Handler
	cfg     ConnectionConfig

	requests atomic.Int32
	lastUse  atomic.Int64

	rw  *ResponseWriter
	req *Request
}

// NewConnection wraps conn for serving, using handler to process each
// request.
func NewConnection(conn net.Conn, handler Handler, cfg ConnectionConfig) *Connection {
	if cfg.ReadBufferSize <= 0 {
		cfg.ReadBufferSize = 4096
	}
	if cfg.WriteBufferSize <= 0 {
		cfg.WriteBufferSize = 4096
	}
	if cfg.MaxPreambleBytes <= 0 {
		cfg.MaxPreambleBytes = DefaultMaxPreambleBytes
	}
	if cfg.Instrumenter == nil {
		cfg.Instrumenter = NoopInstrumenter{}
	}
	c := &Connection{
		conn:    conn,
		reader:  bufio.NewReaderSize(conn, cfg.ReadBufferSize),
		writer:  bufio.NewWriterSize(conn, cfg.WriteBufferSize),
		parser:  NewParser(),
		handler: handler,
		cfg:     cfg,
		req:     NewRequest(),
	}
	c.state.Store(int32(StateNew))
	c.touch()
	return c
}

func (c *Connection) State() ConnState { return ConnState(c.state.Load()) }

func (c *Connection) setState(s ConnState) { c.state.Store(int32(s)) }

func (c *Connection) touch() { c.lastUse.Store(time.Now().UnixNano()) }

// IdleSince reports how long it's been since the connection last made
// progress on a request.
func (c *Connection) IdleSince() time.Duration {
	return time.Since(time.Unix(0, c.lastUse.Load()))
}

func (c *Connection) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Serve runs the connection's request loop until the peer disconnects, an
// unrecoverable error occurs, or the response framing decides the
// connection must close. It always returns with the underlying net.Conn
// closed.
func (c *Connection) Serve() {
	defer c.close()
	c.cfg.Instrumenter.ConnectionAccepted()
	defer c.cfg.Instrumenter.ConnectionClosed()

	for {
		if c.cfg.MaxRequests > 0 && c.requests.Load() >= c.cfg.MaxRequests {
			return
		}
		if !c.serveOne() {
			return
		}
	}
}

// serveOne handles exactly one request/response cycle. It returns false
// when the connection should close after this cycle.
func (c *Connection) serveOne() bool {
	c.setState(StateReadingPreamble)
	c.setReadDeadline()

	c.req.Reset()
	err := c.parser.Parse(c.reader, c.req, c.cfg.MaxPreambleBytes)
	c.touch()

	if err != nil {
		return c.handlePreambleError(err)
	}

	c.requests.Add(1)
	c.setState(StateDispatching)

	willClose := c.req.ShouldClose() || (c.cfg.MaxRequests > 0 && c.requests.Load() >= c.cfg.MaxRequests)

	if c.rw == nil {
		c.rw = newResponseWriter(c.writer, c.req.MethodID == MethodHEAD, c.req.ProtoMinor == 0)
	} else {
		c.rw.reset(c.writer, c.req.MethodID == MethodHEAD, c.req.ProtoMinor == 0)
	}
	if willClose {
		c.rw.SetCloseAfter()
	}
	if c.req.IsChunked() {
		c.cfg.Instrumenter.ChunkedRequest()
	}

	start := time.Now()
	c.setState(StateWritingResponse)
	if !c.invokeHandler() {
		return false
	}

	if err := c.rw.Flush(); err != nil {
		return false
	}
	c.cfg.Instrumenter.RequestServed(c.rw.Status(), c.rw.BytesWritten(), time.Since(start))
	if c.rw.header.Get("Transfer-Encoding") != "" {
		c.cfg.Instrumenter.ChunkedResponse()
	}

	if c.rw.WillClose() {
		return false
	}

	c.setState(StateDrainingBody)
	if !c.drainBody() {
		return false
	}

	return true
}

// invokeHandler calls the handler with panic recovery, and treats a
// returned error the same as a recovered panic: before any response bytes
// reach the wire it's turned into a 500; after the response has started
// streaming it can't be un-sent, so the connection is simply closed.
func (c *Connection) invokeHandler() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.failHandler()
			ok = false
		}
	}()
	if err := c.handler(c.req, c.rw); err != nil {
		c.failHandler()
		return false
	}
	return true
}

// failHandler emits a bare 500 if nothing has been written yet, or leaves
// the connection to close as-is if the response was already underway.
func (c *Connection) failHandler() {
	if c.rw.headerWritten {
		return
	}
	c.setState(StateWritingError)
	c.rw.header.Reset()
	c.rw.status = 500
	c.rw.header.Set("Content-Length", "0")
	c.rw.header.Set("Connection", "close")
	c.rw.closeAfter = true
	_ = c.rw.flushHeaders()
	_ = c.writer.Flush()
}

// drainBody discards any unread request body so the connection is aligned
// on the next request's boundary, bounded by MaxDrainBytes so a handler
// that ignores a huge body can't be used to stall the connection forever.
func (c *Connection) drainBody() bool {
	if c.req.Body == nil {
		return true
	}
	limit := c.cfg.MaxDrainBytes
	if limit <= 0 {
		limit = DefaultMaxDrainBytes
	}
	n, err := io.Copy(io.Discard, io.LimitReader(c.req.Body, limit+1))
	if n > limit {
		return false
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return true
}

// handlePreambleError classifies a parse error: malformed wire bytes
// trigger a resync-and-continue, while transport-level errors (EOF,
// timeout, reset) close the connection silently. A recoverable malformed
// preamble never produces a response of its own: the connection realigns
// to the next request and continues, as if the bad bytes had never
// arrived.
func (c *Connection) handlePreambleError(err error) bool {
	if errors.Is(err, io.EOF) {
		return false
	}
	var malformedErr *MalformedError
	if errors.As(err, &malformedErr) {
		c.cfg.Instrumenter.BadRequest(err)
		if resyncErr := resync(c.reader, c.cfg.MaxPreambleBytes); resyncErr != nil {
			return false
		}
		return true
	}
	// Unwrapped error: I/O failure (timeout, reset, closed conn).
	return false
}

func (c *Connection) setReadDeadline() {
	if c.cfg.ClientTimeout <= 0 {
		return
	}
	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ClientTimeout))
}

func (c *Connection) close() {
	c.setState(StateClosing)
	_ = c.conn.Close()
	c.setState(StateClosed)
}

// Close forcibly terminates the connection from outside the Serve loop,
// used by server shutdown to evict idle keep-alive connections that would
// otherwise sit waiting for their next read deadline.
func (c *Connection) Close() error {
	return c.conn.Close()
}
