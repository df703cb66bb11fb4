package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// authMiddleware checks the bearer token and, when configured, the client address.
func authMiddleware(token string, trustedIPs []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(trustedIPs) > 0 && !isIPAllowed(getClientIP(r), trustedIPs) {
				respondError(w, "forbidden: IP not allowed", http.StatusForbidden)
				return
			}
			if token != "" {
				auth := r.Header.Get("Authorization")
				if auth == "" {
					respondError(w, "unauthorized: missing token", http.StatusUnauthorized)
					return
				}
				if strings.TrimPrefix(auth, "Bearer ") != token {
					respondError(w, "unauthorized: invalid token", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func loggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)
			logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "status", wrapper.statusCode, "took", time.Since(start))
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// isIPAllowed accepts exact addresses, CIDR ranges and "*".
func isIPAllowed(clientIP string, allowed []string) bool {
	for _, a := range allowed {
		if clientIP == a || a == "*" {
			return true
		}
		if strings.Contains(a, "/") {
			_, ipNet, err := net.ParseCIDR(a)
			if err != nil {
				continue
			}
			if ipNet.Contains(net.ParseIP(clientIP)) {
				return true
			}
		}
	}
	return false
}
