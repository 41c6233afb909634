// Package middleware holds the HTTP middleware of the REST surface.
package middleware

import (
	"crypto/subtle"
	"log"
	"net"
	"net/http"
	"strings"
)

// ServiceAuth validates REST callers. Localhost is trusted outright;
// anything else must present the shared token in X-Service-Token. With an
// empty token the surface is localhost-only.
func ServiceAuth(token string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := clientIP(r)
			if clientIP == "" {
				log.Printf("AUTH DENIED: could not determine client IP from %s", r.RemoteAddr)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			// Fast path: localhost.
			if isLocalhost(clientIP) {
				next.ServeHTTP(w, r)
				return
			}

			if token == "" {
				log.Printf("AUTH DENIED: remote access disabled, request from %s", clientIP)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			presented := r.Header.Get("X-Service-Token")
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				log.Printf("AUTH DENIED: bad token from %s", clientIP)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
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

func isLocalhost(ip string) bool {
	switch strings.Trim(strings.TrimSpace(ip), "[]") {
	case "127.0.0.1", "::1", "localhost":
		return true
	}
	return false
}
