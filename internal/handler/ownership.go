package handler

import (
	"net/http"

	"github.com/josh-kwaku/neobank-ledger/internal/auth"
	"github.com/josh-kwaku/neobank-ledger/internal/domain"
)

// ownerFromPath resolves the {id} path value and requires it to be the
// caller's own account. Someone else's account looks the same as a missing one.
func ownerFromPath(r *http.Request) (string, *AppError) {
	callerID, ok := auth.AccountIDFromContext(r.Context())
	if !ok {
		return "", ErrMissingToken
	}

	id := domain.NormalizeNationalID(r.PathValue("id"))
	if id == "" || id != callerID {
		return "", ErrResourceNotFound
	}

	return id, nil
}
