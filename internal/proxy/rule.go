package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/iTrooz/response-cache/internal/config"
)

// UpstreamRule matches the exchanges whose response is held in the cache
type UpstreamRule struct {
	target      *url.URL
	methods     []string
	statusCodes []string
}

// NewUpstreamRule builds a rule from the upstream configuration
func NewUpstreamRule(cfg config.UpstreamConfig) (*UpstreamRule, error) {
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream URL: %w", err)
	}
	if !target.IsAbs() || target.Host == "" {
		return nil, fmt.Errorf("upstream URL must be absolute, got: %s", cfg.URL)
	}

	return &UpstreamRule{
		target:      target,
		methods:     cfg.Methods,
		statusCodes: cfg.StatusCodes,
	}, nil
}

// Host returns the upstream host:port, as seen in CONNECT requests
func (r *UpstreamRule) Host() string {
	if r.target.Port() != "" {
		return r.target.Host
	}
	if r.target.Scheme == "https" {
		return r.target.Host + ":443"
	}
	return r.target.Host + ":80"
}

// MatchRequest checks if a request targets the cached upstream
func (r *UpstreamRule) MatchRequest(requ *http.Request) bool {
	u := getTargetURL(requ)

	if !strings.EqualFold(u.Scheme, r.target.Scheme) {
		return false
	}
	if normalizeHost(u.Scheme, u.Host) != normalizeHost(r.target.Scheme, r.target.Host) {
		return false
	}
	if normalizePath(u.EscapedPath()) != normalizePath(r.target.EscapedPath()) {
		return false
	}
	if u.RawQuery != r.target.RawQuery {
		return false
	}

	// Check if method matches
	for _, m := range r.methods {
		if strings.EqualFold(m, requ.Method) {
			return true
		}
	}
	return false
}

// MatchResponse checks if a response status is worth caching
func (r *UpstreamRule) MatchResponse(resp *http.Response) bool {
	if len(r.statusCodes) == 0 {
		return true
	}
	for _, pattern := range r.statusCodes {
		if config.MatchesStatusCode(resp.StatusCode, pattern) {
			return true
		}
	}
	return false
}
