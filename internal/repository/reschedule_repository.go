package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tuitionlab/tuition-platform/internal/model"
)

type RescheduleRepository interface {
	// Переносы занятия в порядке создания.
	ListByClass(ctx context.Context, classID string) ([]model.OneTimeReschedule, error)
	// Есть ли уже перенос на эту дату (to_date) у занятия.
	ExistsForDate(ctx context.Context, classID string, toDate time.Time) (bool, error)
	// Создать перенос.
	Create(ctx context.Context, r *model.OneTimeReschedule) error
}

type GormRescheduleRepository struct {
	db *gorm.DB
}

func NewGormRescheduleRepository(db *gorm.DB) *GormRescheduleRepository {
	return &GormRescheduleRepository{db: db}
}

func (r *GormRescheduleRepository) ListByClass(ctx context.Context, classID string) ([]model.OneTimeReschedule, error) {
	var items []model.OneTimeReschedule
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRescheduleRepository) ExistsForDate(ctx context.Context, classID string, toDate time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.OneTimeReschedule{}).
		Where("class_id = ?", classID).
		Where("to_date = ?", toDate).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRescheduleRepository) Create(ctx context.Context, rec *model.OneTimeReschedule) error {
	return r.db.WithContext(ctx).Create(rec).Error
}
