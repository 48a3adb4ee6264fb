package web

import (
	"net"
	"net/http"
)

// clientIP returns the client address without port. TrustedRealIP has
// already replaced RemoteAddr for requests from trusted proxies.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
