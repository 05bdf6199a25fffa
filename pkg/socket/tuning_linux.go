//go:build linux

package socket

import (
	"net"

	"golang.org/x/sys/unix"
)

// applyPlatformOptions sets Linux-specific options the generic net.TCPConn
// API doesn't expose, notably TCP_QUICKACK, which disables delayed ACKs so
// a request/response pattern doesn't pay the standard ACK-coalescing delay
// on every turnaround.
func applyPlatformOptions(tc *net.TCPConn, cfg Config) error {
	if !cfg.QuickAck {
		return nil
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// ApplyListener applies listener-scoped options, currently just
// TCP_DEFER_ACCEPT, which avoids waking the accept loop until the peer has
// actually sent data (or never, falling back after the kernel's timeout).
func ApplyListener(ln net.Listener) error {
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		return nil
	}
	raw, err := tl.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_DEFER_ACCEPT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
