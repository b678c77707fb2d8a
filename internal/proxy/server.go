package proxy

import (
	"fmt"
	"net/http"
	"time"

	"github.com/iTrooz/response-cache/internal/cache"
	"github.com/iTrooz/response-cache/internal/cache/httpcache"
	"github.com/iTrooz/response-cache/internal/config"

	"github.com/elazarl/goproxy"
	"github.com/sirupsen/logrus"
)

// Server represents the caching proxy server
type Server struct {
	config *config.Config
	proxy  *goproxy.ProxyHttpServer
	rule   *UpstreamRule
	cache  *httpcache.ResponseCache
	ttl    time.Duration
}

// New creates a new proxy server. opts are applied to the response cache.
func New(cfg *config.Config, opts ...cache.Option) (*Server, error) {
	rule, err := NewUpstreamRule(cfg.Upstream)
	if err != nil {
		return nil, err
	}

	ttl := cfg.GetCacheTTL()
	shared, err := cache.NewShared[*httpcache.Entry](ttl, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}

	s := &Server{
		config: cfg,
		proxy:  goproxy.NewProxyHttpServer(),
		rule:   rule,
		cache:  httpcache.New(shared),
		ttl:    ttl,
	}

	s.proxy.Logger = logrus.StandardLogger()
	s.proxy.Verbose = logrus.IsLevelEnabled(logrus.DebugLevel)
	s.proxy.CertStore = newCertStore()
	s.proxy.NonproxyHandler = s.adminHandler()

	if err := s.setupHTTPSProxyHandler(); err != nil {
		return nil, err
	}

	matchUpstream := goproxy.ReqConditionFunc(func(requ *http.Request, ctx *goproxy.ProxyCtx) bool {
		return s.rule.MatchRequest(requ)
	})
	s.proxy.OnRequest(matchUpstream).DoFunc(s.onRequest)
	s.proxy.OnResponse(matchUpstream).DoFunc(s.onResponse)

	return s, nil
}

// GetProxy returns the underlying handler, for embedding in other servers
func (s *Server) GetProxy() *goproxy.ProxyHttpServer {
	return s.proxy
}

// Cache returns the response cache shared by every proxied request
func (s *Server) Cache() *httpcache.ResponseCache {
	return s.cache
}

// Start starts the proxy server
func (s *Server) Start() error {
	logrus.Infof("Starting caching proxy on port %d", s.config.Server.Port)
	logrus.Infof("Cached upstream: %v %s", s.config.Upstream.Methods, s.config.Upstream.URL)
	logrus.Infof("Cache TTL: %s", s.ttl)

	return http.ListenAndServe(fmt.Sprintf(":%d", s.config.Server.Port), s.proxy)
}
