// Package tlsadapter wraps crypto/tls behind the narrow interface the
// server needs: given a *tls.Config the caller has already built (loaded
// certificates, configured ACME, whatever), wrap a net.Listener so accepted
// connections are TLS connections. The handshake runs on the first read or
// write, so a failed handshake surfaces to the engine as a read error. This
// package deliberately does not load certificates, talk to
// ACME, or manage renewal — that material is out of scope for the engine
// and belongs to the embedding application.
package tlsadapter

import (
	"crypto/tls"
	"net"
)

// Wrap returns a net.Listener whose Accept returns server-side TLS
// connections using cfg as supplied by the caller; Accept does not perform
// the handshake itself. A nil cfg is rejected rather than silently serving
// plaintext.
func Wrap(inner net.Listener, cfg *tls.Config) (net.Listener, error) {
	if cfg == nil {
		return nil, errNilConfig
	}
	return tls.NewListener(inner, cfg), nil
}

var errNilConfig = tlsConfigError("tlsadapter: nil *tls.Config")

type tlsConfigError string

func (e tlsConfigError) Error() string { return string(e) }
