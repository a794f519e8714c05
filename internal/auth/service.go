package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/internal/users"
	"github.com/angelmondragon/streetlink-backend/pkg/db"
	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/identity"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, ident identity.Identity, req RegisterRequest) (*SessionResponse, error)
	Login(ctx context.Context, ident identity.Identity) (*SessionResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*SessionResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*SessionResponse, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

type service struct {
	users userRepository
}

// NewService constructs an auth service with the provided dependencies.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{users: repo}, nil
}

// Register binds a verified Firebase identity to a marketplace profile. The
// operation is idempotent on the firebase uid: replays return the existing
// profile untouched.
func (s *service) Register(ctx context.Context, ident identity.Identity, req RegisterRequest) (*SessionResponse, error) {
	if ident.UID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity missing")
	}

	email := strings.ToLower(strings.TrimSpace(ident.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token carries no email claim")
	}

	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	if existing, err := s.users.FindByFirebaseUID(ctx, ident.UID); err == nil {
		return &SessionResponse{User: users.FromModel(existing)}, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	created, err := s.users.Create(ctx, users.CreateUserDTO{
		FirebaseUID: ident.UID,
		Email:       email,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Phone:       req.Phone,
		Role:        role,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			// Concurrent replay on the same uid wins the race; anything else
			// is an email already claimed by another account.
			if existing, lookupErr := s.users.FindByFirebaseUID(ctx, ident.UID); lookupErr == nil {
				return &SessionResponse{User: users.FromModel(existing)}, nil
			}
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return &SessionResponse{User: users.FromModel(created)}, nil
}

// Login resolves a verified identity to its marketplace profile.
func (s *service) Login(ctx context.Context, ident identity.Identity) (*SessionResponse, error) {
	if ident.UID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity missing")
	}

	user, err := s.users.FindByFirebaseUID(ctx, ident.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not registered").
				WithDetails(map[string]any{"needs_registration": true})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}

	return &SessionResponse{User: users.FromModel(user)}, nil
}

// Me returns the authenticated user's profile.
func (s *service) Me(ctx context.Context, userID uuid.UUID) (*SessionResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	return &SessionResponse{User: users.FromModel(user)}, nil
}

// UpdateProfile applies partial profile changes and returns the fresh profile.
// Email, role and firebase uid are immutable here.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*SessionResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		updates["phone"] = req.Phone
	}
	if req.CompanyName != nil {
		updates["company_name"] = req.CompanyName
	}
	if len(updates) == 0 {
		return s.Me(ctx, userID)
	}

	if err := s.users.UpdateProfile(ctx, userID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
	}

	return s.Me(ctx, userID)
}
