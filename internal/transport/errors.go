package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

var (
	// ErrInvalidBaseURL is returned when the server URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid server URL: expected http(s)://host[:port]")

	// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrRequestFailed is returned when the request could not be sent or no
	// response was received.
	ErrRequestFailed = errors.New("request failed")

	// ErrBodyRead is returned when the response body could not be read.
	ErrBodyRead = errors.New("failed to read response body")

	// ErrProxyNotSOCKS5 is returned when the proxy answers but does not speak SOCKS5.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyCannotConnect is returned when no TCP connection to the proxy could be made.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout is returned when the proxy did not answer in time.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")
)

// statusErrorPrefix is the fixed part of the message reported for a rejected upload.
const statusErrorPrefix = "Failed to upload files. "

// StatusError is returned for a response whose status is outside 2xx.
type StatusError struct {
	// Code is the HTTP status code.
	Code int

	// Text is the status text (reason phrase).
	Text string

	// Detail is the "detail" field of a JSON error body, if the server sent one.
	Detail string
}

// Error returns "Failed to upload files. <status text>".
func (e *StatusError) Error() string {
	return statusErrorPrefix + e.Text
}

// Verbose returns the message followed by the code and the server detail.
func (e *StatusError) Verbose() string {
	msg := fmt.Sprintf("%s (%d)", e.Error(), e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// statusText extracts the reason phrase from an http.Response status line,
// falling back to the standard text for the code when the server sent none.
func statusText(code int, status string) string {
	text := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if text != "" {
		return text
	}
	return http.StatusText(code)
}

// ProxyStatus is the result of a proxy handshake check.
type ProxyStatus int

const (
	// ProxyStatusOK means the proxy completed a SOCKS5 greeting.
	ProxyStatusOK ProxyStatus = iota
	// ProxyStatusWrongType means the peer answered but not as a SOCKS5 proxy.
	ProxyStatusWrongType
	// ProxyStatusCannotConnect means the TCP connection failed.
	ProxyStatusCannotConnect
	// ProxyStatusTimeout means the check ran out of time.
	ProxyStatusTimeout
)

// String returns a human-readable description of the status.
func (s ProxyStatus) String() string {
	switch s {
	case ProxyStatusOK:
		return "OK"
	case ProxyStatusWrongType:
		return "wrong type (not SOCKS5)"
	case ProxyStatusCannotConnect:
		return "cannot connect"
	case ProxyStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Err returns the error for this status, or nil if OK.
func (s ProxyStatus) Err() error {
	switch s {
	case ProxyStatusOK:
		return nil
	case ProxyStatusWrongType:
		return ErrProxyNotSOCKS5
	case ProxyStatusCannotConnect:
		return ErrProxyCannotConnect
	case ProxyStatusTimeout:
		return ErrProxyTimeout
	default:
		return errors.New("unknown proxy status")
	}
}
