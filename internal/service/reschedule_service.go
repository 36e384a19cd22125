package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tuitionlab/tuition-platform/internal/model"
	"github.com/tuitionlab/tuition-platform/internal/repository"
	"github.com/tuitionlab/tuition-platform/internal/timetable"
)

var (
	ErrNotAnOccurrence      = errors.New("no session is scheduled on that date")
	ErrDuplicateReschedule  = errors.New("a reschedule already targets that date")
	ErrRescheduleInvalidDay = errors.New("target date must not be blank")
)

// RescheduleService — разовые переносы занятий.
type RescheduleService struct {
	classRepo      repository.ClassRepository
	rescheduleRepo repository.RescheduleRepository
	eventRepo      repository.EventRepository
}

func NewRescheduleService(
	classRepo repository.ClassRepository,
	rescheduleRepo repository.RescheduleRepository,
	eventRepo repository.EventRepository,
) *RescheduleService {
	return &RescheduleService{
		classRepo:      classRepo,
		rescheduleRepo: rescheduleRepo,
		eventRepo:      eventRepo,
	}
}

// ListForClass возвращает страницу переносов занятия в порядке создания.
// Пагинация в памяти: переносов у занятия единицы, а страница нужна
// порталам для единообразия со списком занятий.
func (s *RescheduleService) ListForClass(
	ctx context.Context,
	classID string,
	page, pageSize int,
) (timetable.Page[model.OneTimeReschedule], error) {
	var empty timetable.Page[model.OneTimeReschedule]

	if _, err := s.classRepo.GetByID(ctx, classID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return empty, ErrClassNotFound
		}
		return empty, fmt.Errorf("get class: %w", err)
	}

	items, err := s.rescheduleRepo.ListByClass(ctx, classID)
	if err != nil {
		return empty, fmt.Errorf("list reschedules: %w", err)
	}

	return timetable.Paginate(items, page, pageSize), nil
}

// Create добавляет разовый перенос занятия.
//
// Переносить можно только реальную сессию: fromDate прогоняется через
// ResolveForDate, так что уже уведённая переносом дата второй раз не
// переносится. На одну целевую дату допускается не больше одного переноса —
// это граница ввода данных, на которую опирается резолвер.
func (s *RescheduleService) Create(
	ctx context.Context,
	classID string,
	fromDate, toDate time.Time,
	timeSlot string,
	reason string,
) (*model.OneTimeReschedule, error) {
	if fromDate.IsZero() || toDate.IsZero() {
		return nil, ErrRescheduleInvalidDay
	}

	slot := timetable.ParseSlot(timeSlot)
	if !slot.Usable() {
		return nil, timetable.ErrInvalidTimeRange
	}

	class, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}

	sched := decodeClass(*class)
	res := timetable.ResolveForDate(sched.Schedule, sched.Window, sched.Reschedules, fromDate)
	if !res.Occurs {
		return nil, ErrNotAnOccurrence
	}

	exists, err := s.rescheduleRepo.ExistsForDate(ctx, classID, timetable.Normalize(toDate))
	if err != nil {
		return nil, fmt.Errorf("check reschedule date: %w", err)
	}
	if exists {
		return nil, ErrDuplicateReschedule
	}

	rec := &model.OneTimeReschedule{
		ID:       uuid.New(),
		ClassID:  class.ID,
		FromDate: datatypes.Date(timetable.Normalize(fromDate)),
		ToDate:   datatypes.Date(timetable.Normalize(toDate)),
		TimeSlot: timeSlot,
		Reason:   reason,
	}
	if err := s.rescheduleRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("create reschedule: %w", err)
	}

	if s.eventRepo != nil {
		_ = s.eventRepo.Append(ctx, &model.Event{
			ID:        uuid.New(),
			EventType: model.EventTypeClassRescheduled,
			ClassID:   &class.ID,
			Details:   timetable.FormatOccurrence(class.Name, toDate, timeSlot),
		})
	}

	return rec, nil
}
