package services

import (
	"context"
	"errors"
	"strings"

	"restaurant_pos/internal/errs"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthorized is returned for unknown staff or a wrong PIN. The two are not told apart.
var ErrUnauthorized = errors.New("invalid staff credentials")

type StaffService interface {
	CreateStaff(ctx context.Context, user *models.User, pin string) error
	Authenticate(ctx context.Context, username, pin string) (*models.User, error)
	GetStaff(ctx context.Context, id uint) (*models.User, error)
}

type staffService struct {
	userRepo repository.UserRepository
}

func NewStaffService(userRepo repository.UserRepository) StaffService {
	return &staffService{userRepo: userRepo}
}

func (s *staffService) CreateStaff(ctx context.Context, user *models.User, pin string) error {
	user.Username = strings.TrimSpace(user.Username)
	if user.Username == "" {
		return errs.Validation("username", "is required")
	}
	if len(pin) < 4 {
		return errs.Validation("pin", "must be at least 4 digits")
	}
	if !IsKnownRole(models.UserRole(user.Role)) {
		return errs.Validation("role", "unknown role %q", user.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PinHash = string(hash)
	user.IsActive = true

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return errs.Conflict(errs.CodeDuplicate, "staff %q already exists", user.Username)
		}
		return errs.Persistence("create staff", err)
	}
	return nil
}

func (s *staffService) Authenticate(ctx context.Context, username, pin string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnauthorized
		}
		return nil, errs.Persistence("authenticate staff", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)); err != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *staffService) GetStaff(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errs.NotFound("staff", id)
		}
		return nil, errs.Persistence("get staff", err)
	}
	return user, nil
}

func IsKnownRole(role models.UserRole) bool {
	switch role {
	case models.Admin, models.Manager, models.Cashier, models.Kitchen:
		return true
	}
	return false
}

// HasRole reports whether the user holds one of the allowed roles. An empty list allows any staff.
func HasRole(user *models.User, allowed ...models.UserRole) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, role := range allowed {
		if models.UserRole(user.Role) == role {
			return true
		}
	}
	return false
}
