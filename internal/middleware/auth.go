package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/josh-kwaku/neobank-ledger/internal/auth"
	"github.com/josh-kwaku/neobank-ledger/internal/handler"
	"github.com/josh-kwaku/neobank-ledger/internal/logging"
)

func bearerToken(r *http.Request) (string, *handler.AppError) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", handler.ErrMissingToken
	}

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", handler.ErrInvalidToken
	}
	return token, nil
}

// Auth validates the session token and puts the caller's account ID on the
// request context and its logger.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, appErr := bearerToken(r)
			if appErr != nil {
				handler.RespondAppError(w, appErr, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				logging.FromContext(r.Context()).Debug("token rejected", "error", err)
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithAccountID(r.Context(), claims.AccountID)
			ctx = logging.With(ctx, "account_id", claims.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminToken guards the operator routes with a static bearer token.
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, appErr := bearerToken(r)
			if appErr != nil {
				handler.RespondAppError(w, appErr, nil)
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				logging.FromContext(r.Context()).Warn("admin token rejected", "path", r.URL.Path)
				handler.RespondAppError(w, handler.ErrAdminForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
