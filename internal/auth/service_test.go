package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/internal/users"
	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/identity"
)

type stubUserRepo struct {
	byUID map[string]*models.User
	byID  map[uuid.UUID]*models.User

	createErr error
	created   []users.CreateUserDTO
	updates   map[string]any
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byUID: map[string]*models.User{},
		byID:  map[uuid.UUID]*models.User{},
	}
}

func (s *stubUserRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, dto)
	user := dto.ToModel()
	user.ID = uuid.New()
	s.byUID[user.FirebaseUID] = user
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) FindByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	if u, ok := s.byUID[firebaseUID]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	u, ok := s.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["first_name"].(string); ok {
		u.FirstName = v
	}
	if v, ok := updates["last_name"].(string); ok {
		u.LastName = v
	}
	return nil
}

func TestRegisterCreatesUser(t *testing.T) {
	repo := newStubUserRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	resp, err := svc.Register(context.Background(), identity.Identity{UID: "fb-1", Email: "Vendor@Example.com"}, RegisterRequest{
		FirstName: "Rosa",
		LastName:  "Mejia",
		Role:      "street_vendor",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.User == nil {
		t.Fatal("expected user in response")
	}
	if resp.User.Email != "vendor@example.com" {
		t.Errorf("expected lowercased email, got %q", resp.User.Email)
	}
	if resp.User.Role != enums.UserRoleStreetVendor {
		t.Errorf("unexpected role %q", resp.User.Role)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 create, got %d", len(repo.created))
	}
}

func TestRegisterIsIdempotentOnReplay(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := NewService(repo)

	ident := identity.Identity{UID: "fb-2", Email: "dist@example.com"}
	req := RegisterRequest{FirstName: "Max", LastName: "Lee", Role: "distributor"}

	first, err := svc.Register(context.Background(), ident, req)
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	second, err := svc.Register(context.Background(), ident, req)
	if err != nil {
		t.Fatalf("replayed register: %v", err)
	}
	if first.User.ID != second.User.ID {
		t.Errorf("replay returned a different user: %s vs %s", first.User.ID, second.User.ID)
	}
	if len(repo.created) != 1 {
		t.Errorf("expected a single create, got %d", len(repo.created))
	}
}

func TestRegisterRejectsInvalidRole(t *testing.T) {
	svc, _ := NewService(newStubUserRepo())

	_, err := svc.Register(context.Background(), identity.Identity{UID: "fb-3", Email: "x@example.com"}, RegisterRequest{
		FirstName: "A",
		LastName:  "B",
		Role:      "admin",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterEmailConflict(t *testing.T) {
	repo := newStubUserRepo()
	repo.createErr = errors.New(`pq: duplicate key value violates unique constraint "idx_users_email"`)
	svc, _ := NewService(repo)

	_, err := svc.Register(context.Background(), identity.Identity{UID: "fb-4", Email: "taken@example.com"}, RegisterRequest{
		FirstName: "A",
		LastName:  "B",
		Role:      "street_vendor",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestLoginUnknownUserSignalsRegistration(t *testing.T) {
	svc, _ := NewService(newStubUserRepo())

	_, err := svc.Login(context.Background(), identity.Identity{UID: "fb-missing"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok || details["needs_registration"] != true {
		t.Errorf("expected needs_registration detail, got %v", typed.Details())
	}
}

func TestLoginReturnsExistingUser(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := NewService(repo)
	created, _ := svc.Register(context.Background(), identity.Identity{UID: "fb-5", Email: "agent@example.com"}, RegisterRequest{
		FirstName: "Ana",
		LastName:  "Silva",
		Role:      "delivery_agent",
	})

	resp, err := svc.Login(context.Background(), identity.Identity{UID: "fb-5"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.User.ID != created.User.ID {
		t.Errorf("login returned wrong user")
	}
}

func TestUpdateProfilePartial(t *testing.T) {
	repo := newStubUserRepo()
	svc, _ := NewService(repo)
	created, _ := svc.Register(context.Background(), identity.Identity{UID: "fb-6", Email: "v@example.com"}, RegisterRequest{
		FirstName: "Old",
		LastName:  "Name",
		Role:      "street_vendor",
	})

	newFirst := "New"
	resp, err := svc.UpdateProfile(context.Background(), created.User.ID, UpdateProfileRequest{FirstName: &newFirst})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if resp.User.FirstName != "New" {
		t.Errorf("first name not updated: %q", resp.User.FirstName)
	}
	if resp.User.LastName != "Name" {
		t.Errorf("last name should be untouched: %q", resp.User.LastName)
	}
	if _, ok := repo.updates["last_name"]; ok {
		t.Error("unexpected last_name in updates map")
	}
}
