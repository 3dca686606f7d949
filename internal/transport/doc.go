// Package transport is the HTTP client that carries form submissions to the
// Secret Santa server.
//
// A Client is bound to a base URL. Requests can optionally be routed through a
// SOCKS5 proxy, and a configured cookie and extra headers are injected into
// every request by a wrapping RoundTripper, so per-server credentials from the
// config file apply without touching the request code.
package transport
