package httpcache

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/iTrooz/response-cache/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResponse(body string) *http.Response {
	return &http.Response{
		StatusCode:    http.StatusOK,
		ProtoMajor:    1,
		ProtoMinor:    1,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Header:        http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newResponseCache(t *testing.T, ttl time.Duration, now func() time.Time) *ResponseCache {
	t.Helper()
	shared, err := cache.NewShared[*Entry](ttl, cache.WithClock(now))
	require.NoError(t, err)
	return New(shared)
}

func TestStoreAndLoad(t *testing.T) {
	c := newResponseCache(t, time.Hour, time.Now)

	req, err := http.NewRequest(http.MethodGet, "https://example.com/api/users", nil)
	require.NoError(t, err)

	resp := newResponse(`{"users":[]}`)
	require.NoError(t, c.Store(req, resp))

	// The original body must remain readable after Store.
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"users":[]}`, string(body))

	cached, err := c.Load(req)
	require.NoError(t, err)
	defer func() { _ = cached.Body.Close() }()

	assert.Equal(t, http.StatusOK, cached.StatusCode)
	assert.Equal(t, "application/json", cached.Header.Get("Content-Type"))
	assert.Same(t, req, cached.Request)

	cachedBody, err := io.ReadAll(cached.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"users":[]}`, string(cachedBody))
}

func TestLoadEmpty(t *testing.T) {
	c := newResponseCache(t, time.Hour, time.Now)
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)

	resp, err := c.Load(req)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	assert.Nil(t, resp)
}

func TestLoadExpired(t *testing.T) {
	now := time.Now()
	c := newResponseCache(t, time.Minute, func() time.Time { return now })
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)

	require.NoError(t, c.Store(req, newResponse("data")))
	_, ok := c.ExpiresAt()
	assert.True(t, ok)

	now = now.Add(time.Minute)

	_, err := c.Load(req)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	_, ok = c.ExpiresAt()
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	c := newResponseCache(t, time.Hour, time.Now)
	req, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)

	require.NoError(t, c.Store(req, newResponse("data")))
	c.Clear()

	_, err := c.Load(req)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestLoadOtherMethod(t *testing.T) {
	c := newResponseCache(t, time.Hour, time.Now)

	head, _ := http.NewRequest(http.MethodHead, "https://example.com/", nil)
	get, _ := http.NewRequest(http.MethodGet, "https://example.com/", nil)

	headResp := newResponse("")
	headResp.ContentLength = 42
	headResp.Request = head
	require.NoError(t, c.Store(head, headResp))

	_, err := c.Load(get)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	cached, err := c.Load(head)
	require.NoError(t, err)
	assert.EqualValues(t, 42, cached.ContentLength)

	require.NoError(t, c.Store(get, newResponse("body")))

	_, err = c.Load(head)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	cached, err = c.Load(get)
	require.NoError(t, err)
	body, err := io.ReadAll(cached.Body)
	require.NoError(t, err)
	assert.Equal(t, "body", string(body))
}

func TestDeserializeInvalidPrefix(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "shorter than prefix", data: []byte("---")},
		{name: "wrong prefix", data: []byte("HTTP/1.1 200 OK\r\n\r\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Deserialize(tt.data, nil)
			assert.Error(t, err)
		})
	}
}
