package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sugarmaple/bakehouse-backend/pkg/config"
)

type fakeWindowStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func (s *fakeWindowStore) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[scope]++
	count := s.counts[scope]
	return count <= limit, count, nil
}

func TestCheckoutRateLimitBlocksAfterLimit(t *testing.T) {
	cfg := config.CheckoutRateLimitConfig{
		Window:    time.Minute,
		UserLimit: 2,
		IPLimit:   2,
	}
	store := &fakeWindowStore{}
	handler := CheckoutRateLimit(cfg, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		req.RemoteAddr = "198.51.100.7:4123"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusCreated, send().Code)
	require.Equal(t, http.StatusCreated, send().Code)

	blocked := send()
	require.Equal(t, http.StatusTooManyRequests, blocked.Code)
	require.Equal(t, "60", blocked.Header().Get("Retry-After"))
}

func TestCheckoutRateLimitScopesUserSeparately(t *testing.T) {
	cfg := config.CheckoutRateLimitConfig{
		Window:    time.Minute,
		UserLimit: 1,
		IPLimit:   1,
	}
	store := &fakeWindowStore{}
	handler := CheckoutRateLimit(cfg, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	asUser := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		req.RemoteAddr = "198.51.100.7:4123"
		req = req.WithContext(WithUserID(req.Context(), userID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusCreated, asUser("user-a").Code)
	require.Equal(t, http.StatusTooManyRequests, asUser("user-a").Code)
	// A different user keeps their own budget.
	require.Equal(t, http.StatusCreated, asUser("user-b").Code)
}

func TestCheckoutRateLimitDisabledWithoutStore(t *testing.T) {
	cfg := config.CheckoutRateLimitConfig{Window: time.Minute, UserLimit: 1, IPLimit: 1}
	handler := CheckoutRateLimit(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
}
