package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/footprint/internal/model"
)

// Default values for Prober configuration.
const (
	// DefaultTimeout is the per-task budget used when the caller passes zero.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read (5MB).
	// Absence markers and titles appear near the top of a page.
	DefaultMaxBodySize int64 = 5 * 1024 * 1024

	// DefaultUserAgent mimics a desktop browser; several platforms serve
	// bot-specific pages to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxRedirects prevents redirect loops.
	maxRedirects = 10
)

// RawResponse is what the prober observed for one endpoint.
// Exactly one of Err or StatusCode is meaningful.
type RawResponse struct {
	// URL is the concrete URL built from the template.
	URL string

	// FinalURL is the URL after redirects.
	FinalURL string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// Body is the (possibly truncated) response body.
	Body []byte

	// ContentLength is the number of body bytes read.
	ContentLength int64

	// Elapsed is the time from request start to body fully read.
	Elapsed time.Duration

	// Err is set when the request failed before a status code was received.
	Err *TransportError
}

// Prober issues single GET requests.
// It holds no per-call state and is safe for concurrent use.
type Prober struct {
	transport   http.RoundTripper
	dialer      proxy.Dialer
	userAgent   string
	headers     map[string]string
	maxBodySize int64

	client     *http.Client
	noRedirect *http.Client
}

// Option configures a Prober.
type Option func(*Prober)

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(p *Prober) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// WithHeaders adds headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(p *Prober) {
		p.headers = headers
	}
}

// WithMaxBodySize limits the number of body bytes read.
func WithMaxBodySize(n int64) Option {
	return func(p *Prober) {
		if n > 0 {
			p.maxBodySize = n
		}
	}
}

// WithTransport sets the base round tripper. Tests use it to plug in
// httptest transports; WithDialer is ignored when a transport is set.
func WithTransport(rt http.RoundTripper) Option {
	return func(p *Prober) {
		p.transport = rt
	}
}

// WithDialer routes every connection through d, typically a SOCKS5 dialer.
func WithDialer(d proxy.Dialer) Option {
	return func(p *Prober) {
		p.dialer = d
	}
}

// New creates a Prober.
func New(opts ...Option) *Prober {
	p := &Prober{
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(p)
	}

	base := p.transport
	if base == nil {
		base = newTransport(p.dialer)
	}
	rt := &headerInjectingTransport{
		base:      base,
		userAgent: p.userAgent,
		headers:   p.headers,
	}

	p.client = &http.Client{
		Transport: rt,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
	p.noRedirect = &http.Client{
		Transport: rt,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return p
}

// newTransport builds the default transport, optionally dialing through d.
func newTransport(d proxy.Dialer) *http.Transport {
	t := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if d == nil {
		dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
		t.DialContext = dialer.DialContext
		return t
	}

	t.Proxy = nil
	if cd, ok := d.(proxy.ContextDialer); ok {
		t.DialContext = cd.DialContext
	} else {
		t.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return d.Dial(network, addr)
		}
	}
	return t
}

// Probe requests the endpoint URL for subject and reads the response.
// timeout bounds the whole call including the body read; zero means DefaultTimeout.
func (p *Prober) Probe(ctx context.Context, subject string, d model.EndpointDescriptor, timeout time.Duration) RawResponse {
	target, err := d.URL(subject)
	if err != nil {
		return RawResponse{Err: &TransportError{Kind: model.ErrorOther, Err: err}}
	}
	raw := RawResponse{URL: target, FinalURL: target}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		raw.Err = &TransportError{Kind: model.ErrorOther, Err: fmt.Errorf("failed to build request: %w", err)}
		return raw
	}

	client := p.client
	if d.NoRedirect {
		client = p.noRedirect
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		raw.Elapsed = time.Since(start)
		raw.Err = &TransportError{Kind: ClassifyTransportError(ctx.Err(), err), Err: err}
		return raw
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	raw.Elapsed = time.Since(start)
	if err != nil {
		raw.Err = &TransportError{Kind: ClassifyTransportError(ctx.Err(), err), Err: fmt.Errorf("failed to read body: %w", err)}
		return raw
	}

	raw.StatusCode = resp.StatusCode
	raw.Body = body
	raw.ContentLength = int64(len(body))
	if resp.Request != nil && resp.Request.URL != nil {
		raw.FinalURL = resp.Request.URL.String()
	}
	return raw
}

// headerInjectingTransport adds the configured User-Agent and headers
// to every request, including redirects.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	for k, v := range t.headers {
		clone.Header.Set(k, v)
	}
	return t.base.RoundTrip(clone)
}
