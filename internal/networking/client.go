package networking

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http2"

	"github.com/rafabd1/hashes/internal/config"
	"github.com/rafabd1/hashes/internal/utils"
)

// RequestIDHeader carries a fresh identifier on every injection request.
const RequestIDHeader = "X-Request-ID"

// Client sends colliding keys to the target as a single form-encoded POST.
type Client struct {
	targetURL   string
	headers     http.Header
	userAgent   string
	wait        bool
	readTimeout time.Duration
	logger      utils.Logger
	pacer       *Pacer

	direct     *http.Client
	proxied    []*http.Client
	proxyLock  sync.Mutex
	proxyIndex int
}

// Response describes the outcome of one injection request.
type Response struct {
	RequestID     string
	StatusCode    int
	BytesSent     int
	BytesReceived int64
	Duration      time.Duration
	Err           error
}

// NewClient creates a client for cfg.TargetURL. Requests sent through it are
// paced by pacer, which may be shared between clients.
func NewClient(cfg *config.Config, pacer *Pacer, logger utils.Logger) (*Client, error) {
	headers, err := cfg.ParseHeaders()
	if err != nil {
		return nil, err
	}

	c := &Client{
		targetURL:   cfg.TargetURL,
		headers:     headers,
		userAgent:   cfg.UserAgent,
		wait:        cfg.WaitResponse,
		readTimeout: cfg.ReadTimeout,
		logger:      logger,
		pacer:       pacer,
	}

	c.direct, err = newHTTPClient(cfg, nil)
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.ParsedProxies {
		proxyURL, err := url.Parse(p.URL)
		if err != nil {
			logger.Warnf("Failed to parse stored proxy URL '%s': %v. Skipping proxy.", p.String(), err)
			continue
		}
		hc, err := newHTTPClient(cfg, proxyURL)
		if err != nil {
			return nil, err
		}
		c.proxied = append(c.proxied, hc)
	}
	return c, nil
}

func newHTTPClient(cfg *config.Config, proxyURL *url.URL) (*http.Client, error) {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	if err := http2.ConfigureTransport(transport); err != nil {
		return nil, fmt.Errorf("failed to enable HTTP/2: %w", err)
	}

	return &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

// nextClient picks the proxies round-robin, or the direct client without any.
func (c *Client) nextClient() *http.Client {
	if len(c.proxied) == 0 {
		return c.direct
	}
	c.proxyLock.Lock()
	defer c.proxyLock.Unlock()
	hc := c.proxied[c.proxyIndex]
	c.proxyIndex = (c.proxyIndex + 1) % len(c.proxied)
	return hc
}

// BuildPayload renders keys as an application/x-www-form-urlencoded body in
// which every key is a parameter with an empty value.
func BuildPayload(keys []string) string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
	}
	return b.String()
}

// Send posts payload to the target. Without wait-for-response the body of the
// reply is discarded unread once its headers arrive. With it, the read timeout
// also bounds draining the body.
func (c *Client) Send(ctx context.Context, payload string) Response {
	resp := Response{RequestID: uuid.NewString(), BytesSent: len(payload)}

	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			resp.Err = err
			return resp
		}
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.targetURL, strings.NewReader(payload))
	if err != nil {
		resp.Err = fmt.Errorf("failed to build request for %s: %w", c.targetURL, err)
		return resp
	}
	for name, values := range c.headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(RequestIDHeader, resp.RequestID)

	start := time.Now()
	httpResp, err := c.nextClient().Do(req)
	if err != nil {
		resp.Duration = time.Since(start)
		resp.Err = fmt.Errorf("request %s to %s failed: %w", resp.RequestID, c.targetURL, err)
		return resp
	}
	defer httpResp.Body.Close()

	resp.StatusCode = httpResp.StatusCode
	if c.wait {
		if c.readTimeout > 0 {
			timer := time.AfterFunc(c.readTimeout, cancel)
			defer timer.Stop()
		}
		resp.BytesReceived, err = io.Copy(io.Discard, httpResp.Body)
		if err != nil {
			resp.Err = fmt.Errorf("failed to read response to %s: %w", resp.RequestID, err)
		}
	}
	resp.Duration = time.Since(start)

	if c.pacer != nil {
		c.pacer.Observe(resp.StatusCode)
	}
	c.logger.Debugf("Request %s answered %d after %s (%d bytes sent)", resp.RequestID, resp.StatusCode, resp.Duration, resp.BytesSent)
	return resp
}
