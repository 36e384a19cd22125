package service

import (
	"context"
	"encoding/json"
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
	ErrClassNotFound = errors.New("class not found")
	ErrTutorNotFound = errors.New("tutor not found")
)

// TimetableService — календарь и редактирование недельных расписаний.
// Проверка конфликтов всегда идёт по свежему списку занятий преподавателя:
// сервис никогда не держит снапшот между вызовами.
type TimetableService struct {
	classRepo repository.ClassRepository
	tutorRepo repository.TutorRepository
	eventRepo repository.EventRepository
}

func NewTimetableService(
	classRepo repository.ClassRepository,
	tutorRepo repository.TutorRepository,
	eventRepo repository.EventRepository,
) *TimetableService {
	return &TimetableService{
		classRepo: classRepo,
		tutorRepo: tutorRepo,
		eventRepo: eventRepo,
	}
}

func (s *TimetableService) checkTutor(ctx context.Context, tutorID string) error {
	if _, err := s.tutorRepo.GetByID(ctx, tutorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTutorNotFound
		}
		return fmt.Errorf("get tutor: %w", err)
	}
	return nil
}

// ClassPage — страница занятий преподавателя.
type ClassPage struct {
	Classes []model.FinalClass
	Total   int64
}

// ListTutorClasses возвращает страницу занятий преподавателя.
func (s *TimetableService) ListTutorClasses(
	ctx context.Context,
	tutorID string,
	status model.ClassStatus,
	page, limit int,
) (*ClassPage, error) {
	if err := s.checkTutor(ctx, tutorID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	classes, total, err := s.classRepo.ListByTutor(ctx, tutorID, status, limit, timetable.Offset(page, limit))
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return &ClassPage{Classes: classes, Total: total}, nil
}

// MonthView строит календарь месяца по активным занятиям преподавателя.
func (s *TimetableService) MonthView(
	ctx context.Context,
	tutorID string,
	year int,
	month time.Month,
) (timetable.MonthView, error) {
	if err := s.checkTutor(ctx, tutorID); err != nil {
		return timetable.MonthView{}, err
	}

	classes, _, err := s.classRepo.ListByTutor(ctx, tutorID, model.ClassStatusActive, 0, 0)
	if err != nil {
		return timetable.MonthView{}, fmt.Errorf("list classes: %w", err)
	}
	return timetable.BuildMonth(decodeClasses(classes), year, month, time.UTC), nil
}

// StudentMonthView — то же самое для портала студента/родителя, через enrollments.
func (s *TimetableService) StudentMonthView(
	ctx context.Context,
	studentID string,
	year int,
	month time.Month,
) (timetable.MonthView, error) {
	classes, err := s.classRepo.ListByStudent(ctx, studentID, model.ClassStatusActive)
	if err != nil {
		return timetable.MonthView{}, fmt.Errorf("list student classes: %w", err)
	}
	return timetable.BuildMonth(decodeClasses(classes), year, month, time.UTC), nil
}

// GetClass возвращает занятие с переносами.
func (s *TimetableService) GetClass(ctx context.Context, classID string) (*model.FinalClass, error) {
	c, err := s.classRepo.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return c, nil
}

// UpdateSchedule применяет новое недельное расписание к занятию.
// Порядок проверок фиксированный:
//  1. пустой набор дней — ошибка ввода;
//  2. нечитаемый или перевёрнутый слот — ошибка ввода;
//  3. пересечение с другими активными занятиями преподавателя — конфликт.
//
// До детектора конфликтов доходят только валидные предложения. При успехе
// возвращается перечитанная из БД копия — она авторитетна для вызывающего.
func (s *TimetableService) UpdateSchedule(
	ctx context.Context,
	classID string,
	days []string,
	timeSlot string,
) (*model.FinalClass, error) {
	days = dedupeDays(days)
	if len(days) == 0 {
		return nil, timetable.ErrNoDaysSelected
	}

	slot := timetable.ParseSlot(timeSlot)
	if !slot.Usable() {
		return nil, timetable.ErrInvalidTimeRange
	}

	class, err := s.GetClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	siblings, _, err := s.classRepo.ListByTutor(ctx, class.TutorID.String(), model.ClassStatusActive, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list tutor classes: %w", err)
	}

	if timetable.HasConflict(decodeClasses(siblings), class.ID, days, slot.Start, slot.End) {
		return nil, timetable.ErrScheduleConflict
	}

	daysJSON, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("encode days: %w", err)
	}

	if err := s.classRepo.UpdateSchedule(ctx, classID, datatypes.JSON(daysJSON), timeSlot); err != nil {
		return nil, fmt.Errorf("update schedule: %w", err)
	}

	s.appendEvent(ctx, model.EventTypeScheduleUpdated, class.ID,
		fmt.Sprintf("%s: %v %s", class.Name, days, timeSlot))

	return s.GetClass(ctx, classID)
}

// NewClass — входные данные для создания занятия.
type NewClass struct {
	TutorID   string
	Name      string
	Subject   string
	Days      []string
	TimeSlot  string
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateClass создаёт занятие преподавателя. Проверки те же, что в
// UpdateSchedule: дни, слот, конфликты с остальными активными занятиями.
func (s *TimetableService) CreateClass(ctx context.Context, in NewClass) (*model.FinalClass, error) {
	if err := s.checkTutor(ctx, in.TutorID); err != nil {
		return nil, err
	}

	days := dedupeDays(in.Days)
	if len(days) == 0 {
		return nil, timetable.ErrNoDaysSelected
	}

	slot := timetable.ParseSlot(in.TimeSlot)
	if !slot.Usable() {
		return nil, timetable.ErrInvalidTimeRange
	}

	siblings, _, err := s.classRepo.ListByTutor(ctx, in.TutorID, model.ClassStatusActive, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list tutor classes: %w", err)
	}
	if timetable.HasConflict(decodeClasses(siblings), uuid.Nil, days, slot.Start, slot.End) {
		return nil, timetable.ErrScheduleConflict
	}

	tutorID, err := uuid.Parse(in.TutorID)
	if err != nil {
		return nil, fmt.Errorf("parse tutor id: %w", err)
	}

	daysJSON, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("encode days: %w", err)
	}

	class := &model.FinalClass{
		ID:         uuid.New(),
		TutorID:    tutorID,
		Name:       in.Name,
		Subject:    in.Subject,
		Status:     model.ClassStatusActive,
		DaysOfWeek: datatypes.JSON(daysJSON),
		TimeSlot:   in.TimeSlot,
	}
	if in.StartDate != nil {
		d := datatypes.Date(timetable.Normalize(*in.StartDate))
		class.StartDate = &d
	}
	if in.EndDate != nil {
		d := datatypes.Date(timetable.Normalize(*in.EndDate))
		class.EndDate = &d
	}

	if err := s.classRepo.Create(ctx, class); err != nil {
		return nil, fmt.Errorf("create class: %w", err)
	}

	s.appendEvent(ctx, model.EventTypeClassCreated, class.ID,
		fmt.Sprintf("%s: %v %s", class.Name, days, in.TimeSlot))

	return s.GetClass(ctx, class.ID.String())
}

// DeleteClass удаляет занятие вместе с переносами (каскад на уровне БД).
func (s *TimetableService) DeleteClass(ctx context.Context, classID string) error {
	class, err := s.GetClass(ctx, classID)
	if err != nil {
		return err
	}

	if err := s.classRepo.Delete(ctx, classID); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}

	s.appendEvent(ctx, model.EventTypeClassDeleted, class.ID, class.Name)
	return nil
}

// RecentEvents — хвост журнала аудита, новые первыми.
func (s *TimetableService) RecentEvents(ctx context.Context, limit int) ([]model.Event, error) {
	if s.eventRepo == nil {
		return []model.Event{}, nil
	}
	events, err := s.eventRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *TimetableService) appendEvent(ctx context.Context, typ model.EventType, classID uuid.UUID, details string) {
	if s.eventRepo == nil {
		return
	}
	e := &model.Event{ID: uuid.New(), EventType: typ, ClassID: &classID, Details: details}
	// Аудит не должен ронять основную операцию.
	if err := s.eventRepo.Append(ctx, e); err != nil {
		return
	}
}

func dedupeDays(days []string) []string {
	seen := make(map[string]struct{}, len(days))
	out := make([]string, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

// decodeClass переводит строку БД в значение для календарной логики.
// Все проверки формы данных происходят здесь, на границе: дальше логика
// не трогает ни JSON, ни опциональные поля.
func decodeClass(c model.FinalClass) timetable.ClassSchedule {
	var days []string
	if len(c.DaysOfWeek) > 0 {
		// Нечитаемый JSON — занятие считается незапланированным.
		_ = json.Unmarshal(c.DaysOfWeek, &days)
	}

	var window timetable.ClassWindow
	if c.StartDate != nil {
		t := time.Time(*c.StartDate)
		window.Start = &t
	}
	if c.EndDate != nil {
		t := time.Time(*c.EndDate)
		window.End = &t
	}

	reschedules := make([]timetable.Reschedule, 0, len(c.Reschedules))
	for _, r := range c.Reschedules {
		reschedules = append(reschedules, timetable.Reschedule{
			From:     time.Time(r.FromDate),
			To:       time.Time(r.ToDate),
			TimeSlot: r.TimeSlot,
		})
	}

	return timetable.ClassSchedule{
		ID:   c.ID,
		Name: c.Name,
		Schedule: timetable.WeeklySchedule{
			Days:     days,
			TimeSlot: c.TimeSlot,
		},
		Window:      window,
		Reschedules: reschedules,
	}
}

func decodeClasses(classes []model.FinalClass) []timetable.ClassSchedule {
	out := make([]timetable.ClassSchedule, 0, len(classes))
	for _, c := range classes {
		out = append(out, decodeClass(c))
	}
	return out
}
