package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tuitionlab/tuition-platform/internal/model"
)

type ClassRepository interface {
	// Занятия преподавателя с фильтром по статусу и пагинацией.
	// Переносы подгружаются всегда — календарь без них бесполезен.
	ListByTutor(ctx context.Context, tutorID string, status model.ClassStatus, limit, offset int) ([]model.FinalClass, int64, error)
	// Занятия студента через enrollments.
	ListByStudent(ctx context.Context, studentID string, status model.ClassStatus) ([]model.FinalClass, error)
	// Найти занятие по ID.
	GetByID(ctx context.Context, id string) (*model.FinalClass, error)
	// Обновить недельное расписание занятия.
	UpdateSchedule(ctx context.Context, id string, daysOfWeek datatypes.JSON, timeSlot string) error
	// Создать занятие.
	Create(ctx context.Context, class *model.FinalClass) error
	// Удалить занятие.
	Delete(ctx context.Context, id string) error
}

type GormClassRepository struct {
	db *gorm.DB
}

func NewGormClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{db: db}
}

func (r *GormClassRepository) ListByTutor(
	ctx context.Context,
	tutorID string,
	status model.ClassStatus,
	limit, offset int,
) ([]model.FinalClass, int64, error) {
	var classes []model.FinalClass
	q := r.db.WithContext(ctx).
		Model(&model.FinalClass{}).
		Where("tutor_id = ?", tutorID)

	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	err := q.Preload("Reschedules", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).
		Order("created_at ASC").
		Find(&classes).Error
	if err != nil {
		return nil, 0, err
	}

	return classes, total, nil
}

func (r *GormClassRepository) ListByStudent(
	ctx context.Context,
	studentID string,
	status model.ClassStatus,
) ([]model.FinalClass, error) {
	var classes []model.FinalClass
	q := r.db.WithContext(ctx).
		Model(&model.FinalClass{}).
		Joins("JOIN enrollments ON enrollments.final_class_id = final_classes.id").
		Where("enrollments.student_id = ?", studentID)

	if status != "" {
		q = q.Where("final_classes.status = ?", status)
	}

	err := q.Preload("Reschedules", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).
		Order("final_classes.created_at ASC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}

	return classes, nil
}

func (r *GormClassRepository) GetByID(ctx context.Context, id string) (*model.FinalClass, error) {
	var c model.FinalClass
	err := r.db.WithContext(ctx).
		Preload("Reschedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormClassRepository) UpdateSchedule(
	ctx context.Context,
	id string,
	daysOfWeek datatypes.JSON,
	timeSlot string,
) error {
	return r.db.WithContext(ctx).
		Model(&model.FinalClass{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"days_of_week": daysOfWeek,
			"time_slot":    timeSlot,
		}).
		Error
}

func (r *GormClassRepository) Create(ctx context.Context, class *model.FinalClass) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *GormClassRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.FinalClass{}, "id = ?", id).Error
}
