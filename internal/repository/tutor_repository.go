package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tuitionlab/tuition-platform/internal/model"
)

type TutorRepository interface {
	GetByID(ctx context.Context, id string) (*model.Tutor, error)
}

type GormTutorRepository struct {
	db *gorm.DB
}

func NewGormTutorRepository(db *gorm.DB) *GormTutorRepository {
	return &GormTutorRepository{db: db}
}

func (r *GormTutorRepository) GetByID(ctx context.Context, id string) (*model.Tutor, error) {
	var t model.Tutor
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
