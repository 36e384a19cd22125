package service

import (
	"context"
	"errors"

	"github.com/tuitionlab/tuition-platform/internal/model"
	"github.com/tuitionlab/tuition-platform/internal/repository"
)

var (
	ErrEmailRequired = errors.New("email is required")
	ErrRoleRequired  = errors.New("role code is required")
	ErrUserNotFound  = errors.New("user not found")
)

// IdentityService реализует регистрацию и управление профилем по email.
type IdentityService struct {
	userRepo repository.UserRepository
}

func NewIdentityService(userRepo repository.UserRepository) *IdentityService {
	return &IdentityService{userRepo: userRepo}
}

// Profile — пользователь вместе с кодом роли.
type Profile struct {
	User *model.User
	Role string
}

// RegisterUser создаёт пользователя по email или возвращает существующего,
// обновляя контактные данные.
func (s *IdentityService) RegisterUser(ctx context.Context, email, displayName, contactPhone string) (*Profile, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	u, err := s.userRepo.UpsertUser(ctx, email, displayName, contactPhone)
	if err != nil {
		return nil, err
	}

	role, _ := s.userRepo.GetRole(ctx, u.ID) // роль может отсутствовать; игнорируем ошибку

	return &Profile{User: u, Role: role}, nil
}

// SetRole назначает роль пользователю по email.
func (s *IdentityService) SetRole(ctx context.Context, email, roleCode string) (*Profile, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if roleCode == "" {
		return nil, ErrRoleRequired
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if err := s.userRepo.SetRole(ctx, u.ID, roleCode); err != nil {
		return nil, err
	}

	return &Profile{User: u, Role: roleCode}, nil
}

// UpdateProfile обновляет контактные данные существующего пользователя.
// Пустые поля не трогаются.
func (s *IdentityService) UpdateProfile(ctx context.Context, email, displayName, contactPhone string) (*Profile, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	u, err := s.userRepo.UpdateContacts(ctx, email, displayName, contactPhone)
	if err != nil {
		return nil, ErrUserNotFound
	}
	role, _ := s.userRepo.GetRole(ctx, u.ID)

	return &Profile{User: u, Role: role}, nil
}

// GetProfile возвращает профиль пользователя по email.
func (s *IdentityService) GetProfile(ctx context.Context, email string) (*Profile, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}
	role, _ := s.userRepo.GetRole(ctx, u.ID)

	return &Profile{User: u, Role: role}, nil
}
