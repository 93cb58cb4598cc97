package guardian

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// checkUserAgent is sent on GET retries. Mercado Livre answers HEAD with 405
// on some listing pages and blocks the default Go user agent.
const checkUserAgent = "Mozilla/5.0"

// defaultCheckHosts are the marketplaces whose listings get verified. URLs
// pointing anywhere else are assumed alive.
var defaultCheckHosts = []string{"mercadolivre.com", "mercadolivre.com.br"}

// LinkChecker reports whether an affiliate URL still resolves to a live
// listing.
type LinkChecker interface {
	Alive(ctx context.Context, rawURL string) bool
}

type httpChecker struct {
	client *http.Client
	hosts  []string
}

// NewLinkChecker builds a checker that probes watched marketplace hosts with
// a HEAD request, falling back to GET on 405. With no hosts given it watches
// the Mercado Livre domains.
func NewLinkChecker(timeout time.Duration, hosts ...string) LinkChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if len(hosts) == 0 {
		hosts = defaultCheckHosts
	}
	return &httpChecker{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		hosts: hosts,
	}
}

// Alive treats an empty URL as dead and any URL outside the watched hosts as
// alive. Only 404 and 410 count as dead; network failures count as alive.
func (c *httpChecker) Alive(ctx context.Context, rawURL string) bool {
	if rawURL == "" {
		return false
	}
	if !c.watched(rawURL) {
		return true
	}

	status, err := c.probe(ctx, http.MethodHead, rawURL, "")
	if err != nil {
		return true
	}
	if status == http.StatusMethodNotAllowed {
		status, err = c.probe(ctx, http.MethodGet, rawURL, checkUserAgent)
		if err != nil {
			return true
		}
	}
	return status != http.StatusNotFound && status != http.StatusGone
}

func (c *httpChecker) watched(rawURL string) bool {
	for _, h := range c.hosts {
		if strings.Contains(rawURL, h) {
			return true
		}
	}
	return false
}

func (c *httpChecker) probe(ctx context.Context, method, rawURL, userAgent string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
