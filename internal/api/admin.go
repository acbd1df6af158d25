package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// adminAllowlistMiddleware restricts admin routes to a static set of client
// IPs. With an empty allowlist every admin request is rejected.
func adminAllowlistMiddleware(logger *slog.Logger, allowlist []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowlist))
	for _, ip := range allowlist {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !allowed[ip] {
				logger.Warn("admin request rejected", "remote_ip", ip, "path", r.URL.Path)
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
