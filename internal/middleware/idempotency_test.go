package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/neobank-ledger/internal/auth"
	"github.com/josh-kwaku/neobank-ledger/internal/repository"
)

const (
	alice = "52998224725"
	bob   = "11144477735"
)

func countingHandler(calls *atomic.Int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"call":%d}`, n)
	})
}

func idempotentRequest(key, accountID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(body))
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	if accountID != "" {
		req = req.WithContext(auth.ContextWithAccountID(req.Context(), accountID))
	}
	return req
}

func TestIdempotency_ReplaysSameRequest(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewMemoryIdempotencyCache())(countingHandler(&calls, http.StatusCreated))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idempotentRequest("k1", alice, `{"amount":100}`))
	require.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, idempotentRequest("k1", alice, `{"amount":100}`))

	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotency_DifferentBodyConflicts(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewMemoryIdempotencyCache())(countingHandler(&calls, http.StatusCreated))

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("k1", alice, `{"amount":100}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idempotentRequest("k1", alice, `{"amount":200}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "IDEMPOTENCY_CONFLICT")
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotency_KeysAreScopedPerAccount(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewMemoryIdempotencyCache())(countingHandler(&calls, http.StatusCreated))

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("k1", alice, `{"amount":100}`))
	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("k1", bob, `{"amount":100}`))

	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_UnavailableIsNotCached(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewMemoryIdempotencyCache())(countingHandler(&calls, http.StatusServiceUnavailable))

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("k1", alice, `{"amount":100}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idempotentRequest("k1", alice, `{"amount":100}`))

	assert.Empty(t, rec.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestIdempotency_InternalErrorIsReplayed(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewMemoryIdempotencyCache())(countingHandler(&calls, http.StatusInternalServerError))

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("k1", alice, `{"amount":100}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idempotentRequest("k1", alice, `{"amount":100}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, int32(1), calls.Load())
}

func TestIdempotency_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		accountID  string
		wantStatus int
	}{
		{"missing key", "", alice, http.StatusBadRequest},
		{"missing account", "k1", "", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			h := Idempotency(repository.NewMemoryIdempotencyCache())(countingHandler(&calls, http.StatusCreated))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, idempotentRequest(tc.key, tc.accountID, `{}`))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Zero(t, calls.Load())
		})
	}
}

func TestIdempotency_GetPassesThrough(t *testing.T) {
	var calls atomic.Int32
	h := Idempotency(repository.NewMemoryIdempotencyCache())(countingHandler(&calls, http.StatusOK))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/x", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), calls.Load())
}
