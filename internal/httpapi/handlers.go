package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tuitionlab/tuition-platform/internal/model"
	"github.com/tuitionlab/tuition-platform/internal/service"
	"github.com/tuitionlab/tuition-platform/internal/timetable"
)

// Handler держит сервисы и валидатор запросов.
type Handler struct {
	timetableSvc  *service.TimetableService
	rescheduleSvc *service.RescheduleService
	identitySvc   *service.IdentityService
	validate      *validator.Validate
}

func NewHandler(
	timetableSvc *service.TimetableService,
	rescheduleSvc *service.RescheduleService,
	identitySvc *service.IdentityService,
) *Handler {
	return &Handler{
		timetableSvc:  timetableSvc,
		rescheduleSvc: rescheduleSvc,
		identitySvc:   identitySvc,
		validate:      validator.New(),
	}
}

// GET /api/final-classes/tutor/:tutorId?status=ACTIVE&page&limit
func (h *Handler) ListTutorClasses(c *fiber.Ctx) error {
	tutorID := c.Params("tutorId")

	status := model.ClassStatus(c.Query("status", string(model.ClassStatusActive)))
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := h.timetableSvc.ListTutorClasses(c.UserContext(), tutorID, status, page, limit)
	if err != nil {
		return errorResponse(c, err)
	}

	resp := ClassListResponse{
		Classes: make([]ClassResponse, 0, len(result.Classes)),
		Page:    page,
		Limit:   limit,
		Total:   result.Total,
	}
	for _, class := range result.Classes {
		resp.Classes = append(resp.Classes, toClassResponse(class))
	}

	return c.JSON(resp)
}

// GET /api/final-classes/:classId
func (h *Handler) GetClass(c *fiber.Ctx) error {
	class, err := h.timetableSvc.GetClass(c.UserContext(), c.Params("classId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(toClassResponse(*class))
}

// GET /api/final-classes/tutor/:tutorId/calendar?year&month
func (h *Handler) TutorCalendar(c *fiber.Ctx) error {
	year, month, ok := yearMonth(c)
	if !ok {
		return badRequest(c, "month must be between 1 and 12")
	}

	view, err := h.timetableSvc.MonthView(c.UserContext(), c.Params("tutorId"), year, month)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// GET /api/final-classes/student/:studentId/calendar?year&month
func (h *Handler) StudentCalendar(c *fiber.Ctx) error {
	year, month, ok := yearMonth(c)
	if !ok {
		return badRequest(c, "month must be between 1 and 12")
	}

	view, err := h.timetableSvc.StudentMonthView(c.UserContext(), c.Params("studentId"), year, month)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

// POST /api/final-classes
func (h *Handler) CreateClass(c *fiber.Ctx) error {
	var req CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return validationResponse(c, err)
	}

	in := service.NewClass{
		TutorID:  req.TutorID,
		Name:     req.Name,
		Subject:  req.Subject,
		Days:     req.Schedule.DaysOfWeek,
		TimeSlot: req.Schedule.TimeSlot,
	}
	if req.StartDate != "" {
		d, _ := time.Parse("2006-01-02", req.StartDate)
		in.StartDate = &d
	}
	if req.EndDate != "" {
		d, _ := time.Parse("2006-01-02", req.EndDate)
		in.EndDate = &d
	}

	class, err := h.timetableSvc.CreateClass(c.UserContext(), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toClassResponse(*class))
}

// DELETE /api/final-classes/:classId
func (h *Handler) DeleteClass(c *fiber.Ctx) error {
	if err := h.timetableSvc.DeleteClass(c.UserContext(), c.Params("classId")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/final-classes/:classId/reschedules?page&limit
func (h *Handler) ListReschedules(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	result, err := h.rescheduleSvc.ListForClass(c.UserContext(), c.Params("classId"), page, limit)
	if err != nil {
		return errorResponse(c, err)
	}

	resp := RescheduleListResponse{
		Reschedules: make([]RescheduleResponse, 0, len(result.Items)),
		Page:        result.Page,
		Limit:       result.PageSize,
		Total:       result.Total,
		HasNext:     result.HasNext,
		HasPrev:     result.HasPrev,
	}
	for _, r := range result.Items {
		resp.Reschedules = append(resp.Reschedules, toRescheduleResponse(r))
	}
	return c.JSON(resp)
}

// GET /api/events?limit
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	events, err := h.timetableSvc.RecentEvents(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return errorResponse(c, err)
	}

	resp := make([]EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, toEventResponse(e))
	}
	return c.JSON(resp)
}

// PUT /api/final-classes/:classId
func (h *Handler) UpdateSchedule(c *fiber.Ctx) error {
	var req UpdateScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return validationResponse(c, err)
	}

	class, err := h.timetableSvc.UpdateSchedule(
		c.UserContext(),
		c.Params("classId"),
		req.Schedule.DaysOfWeek,
		req.Schedule.TimeSlot,
	)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(toClassResponse(*class))
}

// POST /api/final-classes/:classId/reschedules
func (h *Handler) CreateReschedule(c *fiber.Ctx) error {
	var req CreateRescheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return validationResponse(c, err)
	}

	fromDate, _ := time.Parse("2006-01-02", req.FromDate)
	toDate, _ := time.Parse("2006-01-02", req.ToDate)

	rec, err := h.rescheduleSvc.Create(
		c.UserContext(),
		c.Params("classId"),
		fromDate,
		toDate,
		req.TimeSlot,
		req.Reason,
	)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toRescheduleResponse(*rec))
}

func yearMonth(c *fiber.Ctx) (int, time.Month, bool) {
	now := time.Now().UTC()
	year := c.QueryInt("year", now.Year())
	month := c.QueryInt("month", int(now.Month()))
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// errorResponse переводит ошибки сервисов в HTTP-статусы. Сообщения для
// пользователя (как их показывают порталы) подбираются в тех же ветках,
// что и статус, через errors.Is — обёрнутая ошибка получает то же сообщение,
// что и голая.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrClassNotFound),
		errors.Is(err, service.ErrTutorNotFound):
		return respondError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, timetable.ErrScheduleConflict):
		return respondError(c, fiber.StatusConflict,
			"This time range clashes with another class on one or more selected days")
	case errors.Is(err, service.ErrDuplicateReschedule):
		return respondError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, timetable.ErrNoDaysSelected):
		return respondError(c, fiber.StatusUnprocessableEntity, "Please select at least one day")
	case errors.Is(err, timetable.ErrInvalidTimeRange):
		return respondError(c, fiber.StatusUnprocessableEntity, "End time must be after start time")
	case errors.Is(err, service.ErrNotAnOccurrence),
		errors.Is(err, service.ErrRescheduleInvalidDay):
		return respondError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		return respondError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return respondError(c, fiber.StatusBadRequest, msg)
}

func validationResponse(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0]
		// Спец-сообщения для полей расписания.
		if field.Field() == "DaysOfWeek" {
			return c.Status(fiber.StatusUnprocessableEntity).
				JSON(fiber.Map{"error": "Please select at least one day"})
		}
		return c.Status(fiber.StatusUnprocessableEntity).
			JSON(fiber.Map{"error": "invalid field: " + field.Field()})
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
}
