package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
)

// TrustedRealIP rewrites r.RemoteAddr from X-Real-IP or X-Forwarded-For,
// but only when the connection itself comes from a configured proxy.
// Rate limiting and upload history key on RemoteAddr, so accepting these
// headers from arbitrary clients would let anyone spoof another user's
// address or reset their token bucket.
//
// Entries in trusted may be CIDR prefixes ("10.0.0.0/8") or single
// addresses ("127.0.0.1"). With no entries configured, headers are
// ignored entirely, which is the right default when the analysis server
// is exposed directly rather than behind a reverse proxy.
func TrustedRealIP(trusted []string) func(http.Handler) http.Handler {
	prefixes := parseTrusted(trusted)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remote, ok := remoteAddr(r.RemoteAddr)
			if ok && fromTrustedProxy(remote, prefixes) {
				if ip, ok := clientIPFromHeaders(r); ok {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseTrusted resolves the configured proxy list once at startup.
// Invalid entries are logged and skipped rather than failing startup.
func parseTrusted(trusted []string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range trusted {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if p, err := netip.ParsePrefix(entry); err == nil {
			prefixes = append(prefixes, p)
			continue
		}
		if a, err := netip.ParseAddr(entry); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(a, a.BitLen()))
			continue
		}
		slog.Warn("realip: invalid trusted proxy entry, skipping", "entry", entry)
	}
	return prefixes
}

// clientIPFromHeaders extracts the original client address. X-Real-IP
// wins; otherwise the first hop of the X-Forwarded-For chain is taken.
// Values that do not parse as an address are rejected.
func clientIPFromHeaders(r *http.Request) (netip.Addr, bool) {
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		if a, err := netip.ParseAddr(rip); err == nil {
			return a, true
		}
		return netip.Addr{}, false
	}

	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return netip.Addr{}, false
	}
	first := xff
	if idx := strings.Index(xff, ","); idx > 0 {
		first = xff[:idx]
	}
	if a, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
		return a, true
	}
	return netip.Addr{}, false
}

// remoteAddr parses the connection source from a host:port string or a
// bare address.
func remoteAddr(addr string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr(), true
	}
	if a, err := netip.ParseAddr(addr); err == nil {
		return a, true
	}
	return netip.Addr{}, false
}

func fromTrustedProxy(a netip.Addr, prefixes []netip.Prefix) bool {
	for _, p := range prefixes {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
