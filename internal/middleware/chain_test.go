package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/contactman/internal/model"
)

// TestMiddlewareChain_SessionThenRateLimit は
// Session -> RateLimit のチェーンで認証済みリクエストが通ることを検証する。
func TestMiddlewareChain_SessionThenRateLimit(t *testing.T) {
	repo := &mockSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        "valid-session",
				UserID:    "user-chain-test",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}

	rl := newTestRateLimiter(t, rate.Limit(10.0), 10)
	sessionMW := NewSessionMiddleware(repo)

	var capturedUserID string
	handler := sessionMW(rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		capturedUserID = userID
		w.WriteHeader(http.StatusOK)
	})))

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if capturedUserID != "user-chain-test" {
		t.Errorf("userID = %q, want %q", capturedUserID, "user-chain-test")
	}
}

// TestMiddlewareChain_NoSession_RateLimitNotConsulted は
// 未認証リクエストがセッション層で止まり、レートリミッターに到達しないことを検証する。
func TestMiddlewareChain_NoSession_RateLimitNotConsulted(t *testing.T) {
	repo := &mockSessionRepository{}
	rl := newTestRateLimiter(t, rate.Limit(10.0), 10)
	sessionMW := NewSessionMiddleware(repo)

	handler := sessionMW(rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})))

	req := httptest.NewRequest(http.MethodPost, "/contacts", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
	if rl.LimiterCount() != 0 {
		t.Errorf("LimiterCount = %d, want 0 (no bucket for unauthenticated request)", rl.LimiterCount())
	}
}

// TestMiddlewareChain_RateLimited_Returns429 は
// 認証済みでもバケットを使い切ると429が返ることを検証する。
func TestMiddlewareChain_RateLimited_Returns429(t *testing.T) {
	repo := &mockSessionRepository{
		findByIDFn: func(ctx context.Context, id string) (*model.Session, error) {
			return &model.Session{
				ID:        "valid-session",
				UserID:    "user-burst-test",
				ExpiresAt: time.Now().Add(1 * time.Hour),
			}, nil
		},
	}

	rl := newTestRateLimiter(t, rate.Limit(0.1), 1)
	sessionMW := NewSessionMiddleware(repo)

	handler := sessionMW(rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "valid-session"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	if status := send(); status != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", status)
	}
	if status := send(); status != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", status)
	}
}
