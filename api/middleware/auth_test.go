package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	"github.com/angelmondragon/streetlink-backend/pkg/identity"
	"github.com/angelmondragon/streetlink-backend/pkg/types"
)

type stubVerifier struct {
	identities map[string]identity.Identity
}

func (s stubVerifier) Verify(_ context.Context, token string) (identity.Identity, error) {
	if ident, ok := s.identities[token]; ok {
		return ident, nil
	}
	return identity.Identity{}, fmt.Errorf("token rejected")
}

type stubUserFinder struct {
	byUID map[string]*models.User
}

func (s stubUserFinder) FindByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	if u, ok := s.byUID[uid]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	verifier := stubVerifier{identities: map[string]identity.Identity{}}
	handler := Auth(verifier, stubUserFinder{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	for name, header := range map[string]string{
		"missing": "",
		"bogus":   "Bearer nonsense",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}
}

func TestAuthRejectsUnregisteredAccounts(t *testing.T) {
	verifier := stubVerifier{identities: map[string]identity.Identity{
		"good-token": {UID: "fb-1", Email: "vendor@example.com"},
	}}
	handler := Auth(verifier, stubUserFinder{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	var body types.ErrorEnvelope
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "account not registered" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
}

func TestAuthSeedsUserAndRole(t *testing.T) {
	user := &models.User{ID: uuid.New(), FirebaseUID: "fb-1", Role: enums.UserRoleStreetVendor}
	verifier := stubVerifier{identities: map[string]identity.Identity{
		"good-token": {UID: "fb-1", Email: "vendor@example.com"},
	}}
	finder := stubUserFinder{byUID: map[string]*models.User{"fb-1": user}}

	var gotUserID, gotRole, gotUID string
	handler := Auth(verifier, finder, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotUID = FirebaseUIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if gotUserID != user.ID.String() {
		t.Fatalf("user id not seeded, got %q", gotUserID)
	}
	if gotRole != string(enums.UserRoleStreetVendor) {
		t.Fatalf("role not seeded, got %q", gotRole)
	}
	if gotUID != "fb-1" {
		t.Fatalf("firebase uid not seeded, got %q", gotUID)
	}
}

func TestVerifyIdentityDoesNotRequireAccount(t *testing.T) {
	verifier := stubVerifier{identities: map[string]identity.Identity{
		"fresh-token": {UID: "fb-new", Email: "new@example.com"},
	}}

	var gotUID, gotEmail string
	handler := VerifyIdentity(verifier, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUID = FirebaseUIDFromContext(r.Context())
		gotEmail = EmailFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	req.Header.Set("Authorization", "Bearer fresh-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if gotUID != "fb-new" || gotEmail != "new@example.com" {
		t.Fatalf("identity not seeded: uid=%q email=%q", gotUID, gotEmail)
	}
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	handler := RequireRole(enums.UserRoleDistributor, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/distributor/orders", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.UserRoleStreetVendor)))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/distributor/orders", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.UserRoleDistributor)))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
