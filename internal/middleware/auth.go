package middleware

import (
	"net/http"
	"strings"

	"github.com/mbank/ledger/internal/auth"
	"github.com/mbank/ledger/internal/handler"
	"github.com/mbank/ledger/internal/logging"
)

func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			claims, err := auth.ValidateToken(token, secret)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidToken, nil)
				return
			}

			ctx := auth.ContextWithAccountNumber(r.Context(), claims.AccountNumber)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("account_number", claims.AccountNumber))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
