package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/api/responses"
	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/identity"
	"github.com/angelmondragon/streetlink-backend/pkg/logger"
)

type userFinder interface {
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	token := raw
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// VerifyIdentity validates the bearer token with the identity provider and
// seeds the provider subject into the request context. It does not require a
// marketplace account to exist; register and login run behind this variant.
func VerifyIdentity(verifier identity.Verifier, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ident, err := verifier.Verify(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithIdentity(r.Context(), ident.UID, ident.Email)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{"firebase_uid": ident.UID})
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Auth validates the bearer token, resolves the marketplace account behind
// it, and seeds the request context with the user id and role.
func Auth(verifier identity.Verifier, users userFinder, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			ident, err := verifier.Verify(r.Context(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			user, err := users.FindByFirebaseUID(r.Context(), ident.UID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account not registered"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve account"))
				return
			}

			ctx := WithIdentity(r.Context(), ident.UID, ident.Email)
			ctx = WithUserID(ctx, user.ID.String())
			ctx = WithRole(ctx, string(user.Role))

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    user.ID.String(),
					"actor_role": string(user.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
