// Stores one upstream HTTP response in a shared TTL cache
package httpcache

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iTrooz/response-cache/internal/cache"

	"github.com/sirupsen/logrus"
)

// Entry is a serialized response together with the method of the request that produced it.
// A response is only replayed for the same method: a HEAD response has no body to give a GET.
type Entry struct {
	Method string
	Data   []byte
}

type ResponseCache struct {
	shared *cache.Shared[*Entry]
}

func New(shared *cache.Shared[*Entry]) *ResponseCache {
	return &ResponseCache{
		shared: shared,
	}
}

// Store replaces the cached response with resp, the answer to req.
func (r *ResponseCache) Store(req *http.Request, resp *http.Response) error {
	data, err := Serialize(resp)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	r.shared.Set(&Entry{
		Method: strings.ToUpper(req.Method),
		Data:   data,
	})
	return nil
}

// Load rebuilds the cached response for req.
// It returns cache.ErrCacheMiss when nothing valid is cached for req's method.
func (r *ResponseCache) Load(req *http.Request) (*http.Response, error) {
	entry, ok := r.shared.Instance().Lookup().Get()
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	if !strings.EqualFold(entry.Method, req.Method) {
		logrus.Debugf("Cached response is for %s, not %s", entry.Method, req.Method)
		return nil, cache.ErrCacheMiss
	}

	resp, err := Deserialize(entry.Data, req)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize response: %w", err)
	}

	logrus.Debugf("Cache hit for %s %s", req.Method, req.URL.String())
	return resp, nil
}

// Clear drops the cached response.
func (r *ResponseCache) Clear() {
	r.shared.Clear()
}

// ExpiresAt returns when the cached response stops being served.
func (r *ResponseCache) ExpiresAt() (time.Time, bool) {
	return r.shared.Instance().ExpiresAt()
}
