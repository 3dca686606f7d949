package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/secretsanta/internal/formdata"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "secretsanta"

// Client posts forms to a single server.
// It owns one http.Client whose transport adds the configured cookie,
// headers and user agent to every request.
//
// Design decision: the client is bound to one base URL. Endpoints are
// resolved against it, so the page origin used for object URLs and the
// upload target always agree.
type Client struct {
	baseURL *url.URL

	timeout      time.Duration
	proxyAddress string
	cookie       string
	headers      map[string]string
	userAgent    string

	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithProxy routes requests through the SOCKS5 proxy at "host:port".
func WithProxy(address string) Option {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithCookie sends a raw cookie string ("name=value; other=x") with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		c.cookie = cookie
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = headers
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHTTPClient uses hc as the underlying client. Cookie and header
// injection still apply; the proxy and timeout options are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a Client for baseURL. It validates the URL and proxy
// address but does not contact either; call CheckProxy to verify a proxy.
//
// The base URL must be absolute http(s) with a host. A missing trailing slash
// is added so that relative endpoints resolve below the base path.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   u,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.httpClient == nil {
		hc, err := c.newHTTPClient()
		if err != nil {
			return nil, err
		}
		c.httpClient = hc
	}

	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	wrapped := *c.httpClient
	wrapped.Transport = &headerInjectingTransport{
		base:      base,
		cookie:    c.cookie,
		headers:   c.headers,
		userAgent: c.userAgent,
	}
	c.httpClient = &wrapped

	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// newHTTPClient builds the default http.Client.
//
// Design decisions:
//   - Environment proxies (HTTP_PROXY etc.) apply unless a SOCKS5 proxy is
//     configured, in which case every connection is dialled through it.
//   - The request timeout is left at zero unless configured. Uploads are not
//     cut short by the client; the caller's context bounds them.
//   - No cookie jar: the only cookie sent is the configured one.
func (c *Client) newHTTPClient() (*http.Client, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if c.proxyAddress != "" {
		if !IsValidProxyAddress(c.proxyAddress) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidProxyAddress, c.proxyAddress)
		}
		dialer, err := proxy.SOCKS5("tcp", c.proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		transport.DialContext = contextDialer(dialer)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}, nil
}

// contextDialer adapts a proxy.Dialer to http.Transport.DialContext.
//
// proxy.SOCKS5 returns a dialer that implements proxy.ContextDialer, which is
// used directly. For any other dialer the plain Dial runs in a goroutine and
// the context only abandons the wait. A connection that is established after
// the context ended is closed as soon as it arrives.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)
		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()

		select {
		case r := <-resultCh:
			return r.conn, r.err
		case <-ctx.Done():
			go func() {
				if r := <-resultCh; r.conn != nil {
					_ = r.conn.Close()
				}
			}()
			return nil, ctx.Err()
		}
	}
}

// IsValidProxyAddress reports whether address is "host:port" with a port in 1-65535.
// The format is checked by hand rather than with url.Parse because a proxy
// address has no scheme or path. IPv6 literals are not accepted.
func IsValidProxyAddress(address string) bool {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		return false
	}
	host, port := parts[0], parts[1]
	if host == "" || port == "" {
		return false
	}

	portNum := 0
	for _, c := range port {
		if c < '0' || c > '9' {
			return false
		}
		portNum = portNum*10 + int(c-'0')
		if portNum > 65535 {
			return false
		}
	}
	return portNum >= 1
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Origin returns scheme://host of the server, the origin object URLs are minted under.
func (c *Client) Origin() string {
	return c.baseURL.Scheme + "://" + c.baseURL.Host
}

// ProxyAddress returns the configured proxy address, if any.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// Resolve returns the absolute URL for path relative to the base URL.
func (c *Client) Resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// PostForm sends fd as multipart/form-data to path. A non-2xx status is not
// an error here; check Response.OK. The caller must close the response.
func (c *Client) PostForm(ctx context.Context, path string, fd *formdata.FormData) (*Response, error) {
	target, err := c.Resolve(path)
	if err != nil {
		return nil, err
	}

	body, contentType, err := fd.Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	c.logger.Debug("posting form", "url", target, "entries", fd.Len())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	c.logger.Debug("response received",
		"url", target,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return newResponse(resp), nil
}

// headerInjectingTransport adds the configured cookie, headers and user agent
// to every request, redirects included.
//
// The request is cloned before it is modified; a RoundTripper must not
// mutate the caller's request. A user agent already set on the request wins
// over the configured one, and a configured cookie is appended to any cookie
// header the request already carries. Extra headers replace existing values.
type headerInjectingTransport struct {
	base      http.RoundTripper
	cookie    string
	headers   map[string]string
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
