package security

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// NewSessionToken generates an opaque token for a drill session
func NewSessionToken() string {
	return uuid.New().String()
}

// GetClientIP extracts the client IP from a request, preferring proxy headers
func GetClientIP(r *http.Request) string {
	// X-Forwarded-For may contain a comma-separated chain; take the first hop
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
