package proxy

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

type cacheStatus struct {
	Upstream  string     `json:"upstream"`
	Cached    bool       `json:"cached"`
	TTL       string     `json:"ttl"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// adminHandler serves requests addressed to the proxy itself rather than proxied ones
func (s *Server) adminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /cache", s.handleStatus)
	mux.HandleFunc("DELETE /cache", s.handleClear)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := cacheStatus{
		Upstream: s.rule.target.String(),
		TTL:      s.ttl.String(),
	}
	if deadline, ok := s.cache.ExpiresAt(); ok {
		status.Cached = true
		status.ExpiresAt = &deadline
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logrus.Errorf("Failed to write cache status: %v", err)
	}
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.cache.Clear()
	logrus.Infof("Cache cleared by %s", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}
