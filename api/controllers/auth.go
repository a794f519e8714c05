package controllers

import (
	"net/http"

	"github.com/angelmondragon/streetlink-backend/api/middleware"
	"github.com/angelmondragon/streetlink-backend/api/responses"
	"github.com/angelmondragon/streetlink-backend/api/validators"
	"github.com/angelmondragon/streetlink-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/identity"
	"github.com/angelmondragon/streetlink-backend/pkg/logger"
)

func identityFromContext(r *http.Request) (identity.Identity, error) {
	uid := middleware.FirebaseUIDFromContext(r.Context())
	if uid == "" {
		return identity.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity missing")
	}
	return identity.Identity{UID: uid, Email: middleware.EmailFromContext(r.Context())}, nil
}

// AuthRegister creates the marketplace account bound to the verified token.
func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identityFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), ident, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// AuthLogin resolves the account behind the verified token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident, err := identityFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), ident)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// Me returns the authenticated account's profile.
func Me(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Me(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}

// UpdateProfile applies partial profile changes for the authenticated account.
func UpdateProfile(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.UpdateProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.UpdateProfile(r.Context(), userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, session)
	}
}
