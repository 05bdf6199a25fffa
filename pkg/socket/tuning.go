// Package socket applies TCP-level tuning to accepted connections and
// listeners, adapted from the teacher's socket package but rewired onto
// golang.org/x/sys/unix instead of the stdlib syscall package so the
// platform-specific option numbers are named constants rather than magic
// integers.
package socket

import "net"

// Config controls which socket options get applied.
type Config struct {
	NoDelay   bool
	KeepAlive bool
	QuickAck  bool // Linux only; ignored elsewhere
	RecvBuf   int  // 0 leaves the OS default
	SendBuf   int  // 0 leaves the OS default
}

// DefaultConfig disables Nagle's algorithm and enables TCP keepalive, the
// two options that matter for a short-request-response HTTP server
// regardless of platform.
func DefaultConfig() Config {
	return Config{NoDelay: true, KeepAlive: true}
}

// Apply tunes an accepted connection. conn must be a *net.TCPConn; other
// types are left untouched (this lets callers apply it unconditionally to
// whatever net.Listener.Accept returns, including TLS-wrapped conns before
// they're wrapped).
func Apply(conn net.Conn, cfg Config) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tc.SetNoDelay(cfg.NoDelay); err != nil {
		return err
	}
	if err := tc.SetKeepAlive(cfg.KeepAlive); err != nil {
		return err
	}
	if cfg.RecvBuf > 0 {
		_ = tc.SetReadBuffer(cfg.RecvBuf)
	}
	if cfg.SendBuf > 0 {
		_ = tc.SetWriteBuffer(cfg.SendBuf)
	}
	return applyPlatformOptions(tc, cfg)
}
