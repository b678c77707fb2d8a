package proxy

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// normalizeHost drops the port when it is the default one for scheme.
func normalizeHost(scheme, host string) string {
	host = strings.ToLower(host)
	switch scheme {
	case "http":
		return strings.TrimSuffix(host, ":80")
	case "https":
		return strings.TrimSuffix(host, ":443")
	}
	return host
}

// normalizePath treats an empty path as the root.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func getTargetURL(r *http.Request) *url.URL {
	if r.URL.IsAbs() {
		return r.URL
	}

	// Reconstruct URL from Host header
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	u, err := url.Parse(fmt.Sprintf("%s://%s%s", scheme, r.Host, r.URL.RequestURI()))
	if err != nil {
		return r.URL
	}
	return u
}
