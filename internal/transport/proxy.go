package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"time"
)

// checkProxyTimeout bounds a proxy handshake check. It is short because the
// check only exchanges a greeting; no request is relayed.
const checkProxyTimeout = 2 * time.Second

// SOCKS5 protocol constants (RFC 1928).
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthNoAccept = 0xFF
)

// CheckProxy performs a SOCKS5 greeting with the proxy at address and reports
// whether it accepts unauthenticated connections.
//
// The client greeting offers the single method 0x00 (no authentication).
// A SOCKS5 server answers with two bytes, its version and the chosen method,
// where 0xFF means none of the offered methods is acceptable. Anything else on the wire (an HTTP proxy answering
// with a status line, for example) is reported as ProxyStatusWrongType.
//
// Security note: speaking the protocol detects a port that is open but not a
// SOCKS5 proxy, which a plain TCP connect would accept.
func CheckProxy(ctx context.Context, address string) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return ProxyStatusCannotConnect
	}

	// VER=5, NMETHODS=1, METHODS={no auth}
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	// VER, METHOD
	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return ProxyStatusTimeout
		}
		return ProxyStatusWrongType
	}

	if resp[0] != socks5Version || resp[1] == socks5AuthNoAccept || resp[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}
