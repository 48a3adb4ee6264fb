package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// ParseTrustedProxies turns CIDRs or bare addresses into prefixes. Entries
// that parse as neither are returned in invalid.
func ParseTrustedProxies(entries []string) (prefixes []netip.Prefix, invalid []string) {
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if p, err := netip.ParsePrefix(e); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(e); err == nil {
			a = a.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		invalid = append(invalid, e)
	}
	return prefixes, invalid
}

// TrustedRealIP rewrites r.RemoteAddr to the client address reported by a
// trusted proxy. Headers from any other peer are ignored, so clients cannot
// pick their own rate limit bucket.
//
// X-Real-IP wins when present and valid. Otherwise X-Forwarded-For is read
// from the right and the first hop outside the trusted set is the client.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted, invalid := ParseTrustedProxies(trustedCIDRs)
	for _, e := range invalid {
		slog.Warn("realip: skipping invalid trusted proxy", "entry", e)
	}

	isTrusted := func(a netip.Addr) bool {
		for _, p := range trusted {
			if p.Contains(a) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if peer, ok := peerAddr(r.RemoteAddr); ok && isTrusted(peer) {
				if client, ok := forwardedClient(r.Header, isTrusted); ok {
					r.RemoteAddr = client.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(h http.Header, isTrusted func(netip.Addr) bool) (netip.Addr, bool) {
	if v := h.Get("X-Real-IP"); v != "" {
		a, err := netip.ParseAddr(strings.TrimSpace(v))
		return a.Unmap(), err == nil
	}

	hops := strings.Split(strings.Join(h.Values("X-Forwarded-For"), ","), ",")
	var last netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		a, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			// A garbled hop ends the chain we can vouch for.
			break
		}
		last = a.Unmap()
		if !isTrusted(last) {
			return last, true
		}
	}
	// Only trusted hops: the leftmost one read is nearest the client.
	return last, last.IsValid()
}

// peerAddr parses host:port or a bare address.
func peerAddr(remote string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().Unmap(), true
	}
	a, err := netip.ParseAddr(remote)
	return a.Unmap(), err == nil
}
