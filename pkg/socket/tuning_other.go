//go:build !linux

package socket

import "net"

// applyPlatformOptions is a no-op on platforms without the Linux-specific
// TCP_QUICKACK option.
func applyPlatformOptions(tc *net.TCPConn, cfg Config) error {
	return nil
}

// ApplyListener is a no-op on platforms without TCP_DEFER_ACCEPT.
func ApplyListener(ln net.Listener) error {
	return nil
}
