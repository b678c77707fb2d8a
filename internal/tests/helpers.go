package tests

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/iTrooz/response-cache/internal/cache"
	"github.com/iTrooz/response-cache/internal/config"
	"github.com/iTrooz/response-cache/internal/proxy"
)

// fixture_upstream creates a test upstream server counting the requests it serves.
// Paths under /fail answer 500.
func fixture_upstream(hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, requ *http.Request) {
		n := hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if requ.URL.Path == "/fail" {
			w.WriteHeader(http.StatusInternalServerError)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_, _ = fmt.Fprintf(w, `{"message": "Hello from upstream", "path": %q, "hit": %d}`, requ.URL.Path, n)
	}))
}

// fixture_config creates a test config caching upstreamURL for ttlMinutes
func fixture_config(upstreamURL string, ttlMinutes int) *config.Config {
	cfg := config.Default()
	cfg.Upstream.URL = upstreamURL
	cfg.Cache.TTL = ttlMinutes
	return &cfg
}

// fixture_proxy creates a proxy server with the given config and returns the server, test server, and HTTP client
func fixture_proxy(cfg *config.Config, opts ...cache.Option) (*proxy.Server, *httptest.Server, *http.Client, error) {
	proxyServer, err := proxy.New(cfg, opts...)
	if err != nil {
		return nil, nil, nil, err
	}

	proxyTestServer := httptest.NewServer(proxyServer.GetProxy())

	// Create HTTP client that uses our proxy
	proxyURL, _ := url.Parse(proxyTestServer.URL)
	client := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyURL(proxyURL),
		},
		Timeout: 10 * time.Second,
	}

	return proxyServer, proxyTestServer, client, nil
}

// fakeClock is a manually advanced time source for cache expiry
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
