package httpapi

import (
	"encoding/json"
	"time"

	"github.com/tuitionlab/tuition-platform/internal/model"
)

// ScheduleDTO — недельное расписание в формате API.
type ScheduleDTO struct {
	DaysOfWeek []string `json:"daysOfWeek" validate:"required,min=1,dive,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	TimeSlot   string   `json:"timeSlot" validate:"required"`
}

// UpdateScheduleRequest — тело PUT /api/final-classes/{classId}.
type UpdateScheduleRequest struct {
	Schedule ScheduleDTO `json:"schedule" validate:"required"`
}

// CreateRescheduleRequest — тело POST /api/final-classes/{classId}/reschedules.
type CreateRescheduleRequest struct {
	FromDate string `json:"fromDate" validate:"required,datetime=2006-01-02"`
	ToDate   string `json:"toDate" validate:"required,datetime=2006-01-02"`
	TimeSlot string `json:"timeSlot" validate:"required"`
	Reason   string `json:"reason"`
}

// CreateClassRequest — тело POST /api/final-classes.
type CreateClassRequest struct {
	TutorID   string      `json:"tutorId" validate:"required,uuid"`
	Name      string      `json:"name" validate:"required"`
	Subject   string      `json:"subject"`
	Schedule  ScheduleDTO `json:"schedule" validate:"required"`
	StartDate string      `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string      `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// RescheduleResponse — перенос в формате API.
type RescheduleResponse struct {
	ID       string `json:"id"`
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
	TimeSlot string `json:"timeSlot"`
	Reason   string `json:"reason,omitempty"`
}

// ClassResponse — занятие в формате API.
type ClassResponse struct {
	ID                 string               `json:"id"`
	TutorID            string               `json:"tutorId"`
	Name               string               `json:"name"`
	Subject            string               `json:"subject,omitempty"`
	Status             string               `json:"status"`
	Schedule           ScheduleDTO          `json:"schedule"`
	StartDate          *string              `json:"startDate,omitempty"`
	EndDate            *string              `json:"endDate,omitempty"`
	OneTimeReschedules []RescheduleResponse `json:"oneTimeReschedules"`
}

// ClassListResponse — страница занятий.
type ClassListResponse struct {
	Classes []ClassResponse `json:"classes"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Total   int64           `json:"total"`
}

// RescheduleListResponse — страница переносов занятия.
type RescheduleListResponse struct {
	Reschedules []RescheduleResponse `json:"reschedules"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	Total       int                  `json:"total"`
	HasNext     bool                 `json:"hasNext"`
	HasPrev     bool                 `json:"hasPrev"`
}

// EventResponse — событие аудита в формате API.
type EventResponse struct {
	ID        string `json:"id"`
	EventType string `json:"eventType"`
	CreatedAt string `json:"createdAt"`
	UserID    string `json:"userId,omitempty"`
	ClassID   string `json:"classId,omitempty"`
	Details   string `json:"details,omitempty"`
}

func toEventResponse(e model.Event) EventResponse {
	resp := EventResponse{
		ID:        e.ID.String(),
		EventType: string(e.EventType),
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		Details:   e.Details,
	}
	if e.UserID != nil {
		resp.UserID = e.UserID.String()
	}
	if e.ClassID != nil {
		resp.ClassID = e.ClassID.String()
	}
	return resp
}

func toClassResponse(c model.FinalClass) ClassResponse {
	var days []string
	if len(c.DaysOfWeek) > 0 {
		_ = json.Unmarshal(c.DaysOfWeek, &days)
	}
	if days == nil {
		days = []string{}
	}

	resp := ClassResponse{
		ID:      c.ID.String(),
		TutorID: c.TutorID.String(),
		Name:    c.Name,
		Subject: c.Subject,
		Status:  string(c.Status),
		Schedule: ScheduleDTO{
			DaysOfWeek: days,
			TimeSlot:   c.TimeSlot,
		},
		OneTimeReschedules: make([]RescheduleResponse, 0, len(c.Reschedules)),
	}

	if c.StartDate != nil {
		s := time.Time(*c.StartDate).Format("2006-01-02")
		resp.StartDate = &s
	}
	if c.EndDate != nil {
		s := time.Time(*c.EndDate).Format("2006-01-02")
		resp.EndDate = &s
	}

	for _, r := range c.Reschedules {
		resp.OneTimeReschedules = append(resp.OneTimeReschedules, toRescheduleResponse(r))
	}

	return resp
}

func toRescheduleResponse(r model.OneTimeReschedule) RescheduleResponse {
	return RescheduleResponse{
		ID:       r.ID.String(),
		FromDate: time.Time(r.FromDate).Format("2006-01-02"),
		ToDate:   time.Time(r.ToDate).Format("2006-01-02"),
		TimeSlot: r.TimeSlot,
		Reason:   r.Reason,
	}
}
