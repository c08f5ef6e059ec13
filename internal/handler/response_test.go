package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"invalid recipient", domain.ErrInvalidRecipient, http.StatusBadRequest, "INVALID_RECIPIENT"},
		{"self transfer", domain.ErrSelfTransfer, http.StatusUnprocessableEntity, "SELF_TRANSFER_NOT_ALLOWED"},
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound, "ACCOUNT_NOT_FOUND"},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{"store io", fmt.Errorf("x: %w: %w", domain.ErrStoreIO, errors.New("disk full")), http.StatusServiceUnavailable, "STORE_IO_FAILURE"},
		{"partial commit wraps store io", fmt.Errorf("x: %w: %w", domain.ErrPartialCommit, domain.ErrStoreIO), http.StatusInternalServerError, "PARTIAL_COMMIT"},
		{"account exists", domain.ErrAccountExists, http.StatusConflict, "ACCOUNT_ALREADY_EXISTS"},
		{"invalid national id", domain.ErrInvalidNationalID, http.StatusBadRequest, "INVALID_NATIONAL_ID"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"invalid request", domain.ErrInvalidRequest, http.StatusBadRequest, "INVALID_REQUEST"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondDomainError(rec, fmt.Errorf("Transfer: %w", tc.err))

			assert.Equal(t, tc.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}
