package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/google/uuid"

	"github.com/tuitionlab/tuition-platform/internal/model"
)

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpsertUser(ctx context.Context, email, displayName, contactPhone string) (*model.User, error)
	UpdateContacts(ctx context.Context, email, displayName, contactPhone string) (*model.User, error)
	SetRole(ctx context.Context, userID uuid.UUID, roleCode string) error
	GetRole(ctx context.Context, userID uuid.UUID) (string, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpsertUser возвращает существующего пользователя по email, обновляя
// контактные данные, либо создаёт нового.
func (r *GormUserRepository) UpsertUser(ctx context.Context, email, displayName, contactPhone string) (*model.User, error) {
	email = normalizeEmail(email)

	var u model.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	switch {
	case err == nil:
		update := map[string]any{}
		if displayName != "" && displayName != u.DisplayName {
			update["display_name"] = displayName
		}
		if contactPhone != "" && contactPhone != u.ContactPhone {
			update["contact_phone"] = contactPhone
		}
		if len(update) > 0 {
			if err := r.db.WithContext(ctx).Model(&u).Updates(update).Error; err != nil {
				return nil, err
			}
		}
		return &u, nil
	case err == gorm.ErrRecordNotFound:
		u = model.User{
			ID:           uuid.New(),
			Email:        email,
			DisplayName:  displayName,
			ContactPhone: contactPhone,
		}
		if err := r.db.WithContext(ctx).Create(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	default:
		return nil, err
	}
}

func (r *GormUserRepository) UpdateContacts(ctx context.Context, email, displayName, contactPhone string) (*model.User, error) {
	u, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	update := map[string]any{}
	if displayName != "" {
		update["display_name"] = displayName
	}
	if contactPhone != "" {
		update["contact_phone"] = contactPhone
	}
	if len(update) > 0 {
		if err := r.db.WithContext(ctx).Model(u).Updates(update).Error; err != nil {
			return nil, err
		}
	}
	return u, nil
}

// SetRole назначает роль пользователю; роль создаётся при первом обращении.
func (r *GormUserRepository) SetRole(ctx context.Context, userID uuid.UUID, roleCode string) error {
	var role model.Role
	err := r.db.WithContext(ctx).Where("code = ?", roleCode).First(&role).Error
	if err == gorm.ErrRecordNotFound {
		role = model.Role{Code: roleCode}
		if err := r.db.WithContext(ctx).Create(&role).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	// Одна роль на пользователя: старые связи убираем.
	if err := r.db.WithContext(ctx).Delete(&model.UserRole{}, "user_id = ?", userID).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&model.UserRole{RoleID: role.ID, UserID: userID}).Error
}

func (r *GormUserRepository) GetRole(ctx context.Context, userID uuid.UUID) (string, error) {
	var code string
	err := r.db.WithContext(ctx).
		Model(&model.UserRole{}).
		Select("roles.code").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Limit(1).
		Scan(&code).Error
	if err != nil {
		return "", err
	}
	return code, nil
}
