package proxy

import (
	"errors"
	"net/http"

	"github.com/iTrooz/response-cache/internal/cache"

	"github.com/elazarl/goproxy"
	"github.com/sirupsen/logrus"
)

// servedFromCache marks a ProxyCtx whose response came from the cache
type servedFromCache struct{}

// getCachedResponse returns the cached upstream response if available
func (s *Server) getCachedResponse(requ *http.Request) *http.Response {
	resp, err := s.cache.Load(requ)
	if errors.Is(err, cache.ErrCacheMiss) {
		logrus.Debugf("No cached data found for %s", requ.URL)
		return nil
	}
	if err != nil {
		logrus.Errorf("Failed to get cached data for %s: %v", requ.URL, err)
		return nil
	}

	resp.Header.Set("X-Cache", "HIT")
	return resp
}

// cacheResponse stores a response in the cache
func (s *Server) cacheResponse(requ *http.Request, resp *http.Response) {
	if err := s.cache.Store(requ, resp); err != nil {
		logrus.Errorf("Failed to cache response for %s: %v", requ.URL.String(), err)
		return
	}
	logrus.Infof("Cached response for %s %s", requ.Method, requ.URL.String())
}

func (s *Server) onRequest(requ *http.Request, ctx *goproxy.ProxyCtx) (*http.Request, *http.Response) {
	if resp := s.getCachedResponse(requ); resp != nil {
		ctx.UserData = servedFromCache{}
		logrus.Infof("Serving from cache: %s", requ.URL.String())
		return requ, resp
	}
	return requ, nil
}

func (s *Server) onResponse(resp *http.Response, ctx *goproxy.ProxyCtx) *http.Response {
	if resp == nil {
		if ctx.Error != nil {
			logrus.Errorf("Upstream request %s failed: %v", ctx.Req.URL, ctx.Error)
		}
		return resp
	}
	if _, hit := ctx.UserData.(servedFromCache); hit {
		return resp
	}

	if s.rule.MatchResponse(resp) {
		s.cacheResponse(ctx.Req, resp)
	} else {
		logrus.Debugf("Not caching %s: status %d excluded by rules", ctx.Req.URL, resp.StatusCode)
	}

	resp.Header.Set("X-Cache", "MISS")
	return resp
}
