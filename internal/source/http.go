package source

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"outagemonitor/internal/config"
	"outagemonitor/internal/telemetry"
)

// maxPageBytes bounds how much of the upstream body is read.
const maxPageBytes = 8 << 20

// HTTPFetcher retrieves the outage page from the utility website.
type HTTPFetcher struct {
	url     string
	headers map[string]string
	client  *http.Client
	metrics *telemetry.Metrics
}

// NewHTTPFetcher builds a fetcher with browser-like headers. The upstream
// certificate chain is often incomplete, so verification can be disabled.
func NewHTTPFetcher(cfg config.SourceConfig, metrics *telemetry.Metrics) *HTTPFetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec // upstream serves a broken chain
	}

	headers := map[string]string{}
	setHeader := func(name, value string) {
		if value != "" {
			headers[name] = value
		}
	}
	setHeader("User-Agent", cfg.UserAgent)
	setHeader("Accept", cfg.Accept)
	setHeader("Accept-Language", cfg.AcceptLanguage)
	setHeader("Referer", cfg.Referer)

	return &HTTPFetcher{
		url:     cfg.URL,
		headers: headers,
		client:  &http.Client{Transport: transport, Timeout: timeout},
		metrics: metrics,
	}
}

// Page downloads the current markup.
func (f *HTTPFetcher) Page(ctx context.Context) (string, error) {
	start := time.Now()
	body, err := f.get(ctx)
	f.metrics.ObserveFetch(time.Since(start), len(body), err)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", err
	}
	for name, value := range f.headers {
		req.Header.Set(name, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return "", errors.New("request timed out")
		}
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
