package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedRequest(t *testing.T, handler http.Handler, remoteAddr, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = remoteAddr
	if token != "" {
		req.Header.Set("X-Service-Token", token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestServiceAuthLocalhostFastPath(t *testing.T) {
	h := ServiceAuth("secret")(okHandler())
	if rec := authedRequest(t, h, "127.0.0.1:51234", ""); rec.Code != http.StatusOK {
		t.Errorf("localhost without token: code = %d", rec.Code)
	}
	if rec := authedRequest(t, h, "[::1]:51234", ""); rec.Code != http.StatusOK {
		t.Errorf("IPv6 localhost without token: code = %d", rec.Code)
	}
}

func TestServiceAuthRemoteNeedsToken(t *testing.T) {
	h := ServiceAuth("secret")(okHandler())
	if rec := authedRequest(t, h, "203.0.113.9:40000", ""); rec.Code != http.StatusForbidden {
		t.Errorf("remote without token: code = %d", rec.Code)
	}
	if rec := authedRequest(t, h, "203.0.113.9:40000", "wrong"); rec.Code != http.StatusForbidden {
		t.Errorf("remote with bad token: code = %d", rec.Code)
	}
	if rec := authedRequest(t, h, "203.0.113.9:40000", "secret"); rec.Code != http.StatusOK {
		t.Errorf("remote with good token: code = %d", rec.Code)
	}
}

func TestServiceAuthEmptyTokenIsLocalhostOnly(t *testing.T) {
	h := ServiceAuth("")(okHandler())
	if rec := authedRequest(t, h, "203.0.113.9:40000", "anything"); rec.Code != http.StatusForbidden {
		t.Errorf("remote access with empty token config: code = %d", rec.Code)
	}
	if rec := authedRequest(t, h, "127.0.0.1:40000", ""); rec.Code != http.StatusOK {
		t.Errorf("localhost with empty token config: code = %d", rec.Code)
	}
}

func TestServiceAuthHonorsForwardedFor(t *testing.T) {
	h := ServiceAuth("secret")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 127.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("forwarded remote client treated as localhost: code = %d", rec.Code)
	}
}
