package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// NewRealIP rewrites r.RemoteAddr to the client address reported by
// X-Forwarded-For or X-Real-IP, but only when the connection comes from one
// of the trusted proxies. Requests from anyone else keep their socket
// address, so a client cannot pick the IP the rate limiter and request log see.
//
// X-Forwarded-For is read right to left: the first hop that is not itself a
// trusted proxy is the client.
func NewRealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, ok := parseAddr(clientIP(r))
			if ok && isTrusted(peer, trusted) {
				if ip, found := forwardedClient(r, trusted); found {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func forwardedClient(r *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip, ok := parseAddr(strings.TrimSpace(hops[i]))
			if !ok {
				// A malformed hop means everything left of it is unverifiable.
				return netip.Addr{}, false
			}
			if !isTrusted(ip, trusted) {
				return ip, true
			}
		}
	}
	if ip, ok := parseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ok {
		return ip, true
	}
	return netip.Addr{}, false
}

func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}

// parseAddr accepts a bare IP or host:port.
func parseAddr(s string) (netip.Addr, bool) {
	if s == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return ip.Unmap(), true
}
