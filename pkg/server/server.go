// Package server ties the http11 connection engine to real listeners: one
// or more configured ports (optionally TLS), a bounded worker pool that
// provides backpressure instead of a goroutine per connection, socket
// tuning on each accepted connection, and graceful shutdown that evicts
// idle keep-alive connections rather than waiting on them forever.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/brinkhttp/brink/pkg/http11"
	"github.com/brinkhttp/brink/pkg/socket"
	"github.com/brinkhttp/brink/pkg/tlsadapter"
)

// ListenerConfig describes one port to accept connections on.
type ListenerConfig struct {
	Addr string // e.g. ":8080"
	TLS  *tls.Config
}

// Config configures a Server.
type Config struct {
	Handler   http11.Handler
	Listeners []ListenerConfig

	// WorkerThreads bounds how many connections are served concurrently
	// per listener; 0 means runtime.NumCPU().
	WorkerThreads int

	ClientTimeout    time.Duration
	ReadBufferSize   int
	WriteBufferSize  int
	MaxPreambleBytes int
	MaxDrainBytes    int64
	MaxRequests      int32

	// ShutdownGrace bounds how long Shutdown waits for in-flight requests
	// before force-closing remaining connections, including idle
	// keep-alive ones.
	ShutdownGrace time.Duration

	SocketTuning bool
	Instrumenter http11.Instrumenter
}

func (c Config) connConfig() http11.ConnectionConfig {
	return http11.ConnectionConfig{
		ReadBufferSize:   c.ReadBufferSize,
		WriteBufferSize:  c.WriteBufferSize,
		MaxPreambleBytes: c.MaxPreambleBytes,
		MaxDrainBytes:    c.MaxDrainBytes,
		MaxRequests:      c.MaxRequests,
		ClientTimeout:    c.ClientTimeout,
		Instrumenter:     c.Instrumenter,
	}
}

// Server runs one accept loop plus worker pool per configured listener.
type Server struct {
	cfg Config

	mu        sync.Mutex
	listeners []net.Listener
	conns     map[*http11.Connection]struct{}
	wg        sync.WaitGroup
	closing   chan struct{}
	closeOnce sync.Once
}

// New builds a Server from cfg. It does not start listening; call
// ListenAndServe for that.
func New(cfg Config) *Server {
	if cfg.ClientTimeout <= 0 {
		cfg.ClientTimeout = http11.DefaultClientTimeout
	}
	if cfg.MaxPreambleBytes <= 0 {
		cfg.MaxPreambleBytes = http11.DefaultMaxPreambleBytes
	}
	if cfg.MaxDrainBytes <= 0 {
		cfg.MaxDrainBytes = http11.DefaultMaxDrainBytes
	}
	if cfg.Instrumenter == nil {
		cfg.Instrumenter = http11.NoopInstrumenter{}
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}
	return &Server{
		cfg:     cfg,
		conns:   make(map[*http11.Connection]struct{}),
		closing: make(chan struct{}),
	}
}

// ListenAndServe opens every configured listener and blocks until the
// server is shut down or every listener fails.
func (s *Server) ListenAndServe() error {
	if len(s.cfg.Listeners) == 0 {
		return errors.New("server: no listeners configured")
	}
	errCh := make(chan error, len(s.cfg.Listeners))
	for _, lc := range s.cfg.Listeners {
		lc := lc
		ln, err := net.Listen("tcp", lc.Addr)
		if err != nil {
			return err
		}
		if lc.TLS != nil {
			wrapped, err := tlsadapter.Wrap(ln, lc.TLS)
			if err != nil {
				_ = ln.Close()
				return err
			}
			ln = wrapped
		} else if s.cfg.SocketTuning {
			_ = socket.ApplyListener(ln)
		}
		s.mu.Lock()
		s.listeners = append(s.listeners, ln)
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			errCh <- s.acceptLoop(ln)
		}()
	}
	var firstErr error
	for range s.cfg.Listeners {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Server) acceptLoop(ln net.Listener) error {
	workers := s.cfg.WorkerThreads
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.closing:
				return nil
			default:
				return err
			}
		}
		if s.cfg.SocketTuning {
			_ = socket.Apply(conn, socket.DefaultConfig())
		}
		sem <- struct{}{}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { <-sem }()
			s.serveConn(conn)
		}()
	}
}

func (s *Server) serveConn(conn net.Conn) {
	c := http11.NewConnection(conn, s.cfg.Handler, s.cfg.connConfig())
	s.trackConn(c)
	defer s.untrackConn(c)
	c.Serve()
}

func (s *Server) trackConn(c *http11.Connection) {
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrackConn(c *http11.Connection) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// Shutdown stops accepting new connections, waits up to the configured
// grace period (or ctx's deadline, whichever is shorter) for in-flight
// requests to finish, then force-closes every still-tracked connection,
// including idle keep-alive ones a naive pooling client is still holding
// open, so those sockets see an explicit close rather than hanging until
// the client's own timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })

	s.mu.Lock()
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	grace := time.NewTimer(s.cfg.ShutdownGrace)
	defer grace.Stop()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
	case <-grace.C:
	}

	s.mu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	<-done
	return nil
}

// Close immediately closes every listener and tracked connection without
// waiting for in-flight work.
func (s *Server) Close() error {
	s.closeOnce.Do(func() { close(s.closing) })
	s.mu.Lock()
	for _, ln := range s.listeners {
		_ = ln.Close()
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}
