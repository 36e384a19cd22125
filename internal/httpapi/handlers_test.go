package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tuitionlab/tuition-platform/internal/model"
	"github.com/tuitionlab/tuition-platform/internal/repository"
	"github.com/tuitionlab/tuition-platform/internal/service"
	"github.com/tuitionlab/tuition-platform/internal/timetable"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			display_name TEXT,
			contact_phone TEXT,
			note TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE roles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL,
			name TEXT
		);`,
		`CREATE TABLE user_roles (
			role_id INTEGER NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY (role_id, user_id)
		);`,
		`CREATE TABLE tutors (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			display_name TEXT NOT NULL,
			subjects TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE final_classes (
			id TEXT PRIMARY KEY,
			tutor_id TEXT NOT NULL,
			name TEXT NOT NULL,
			subject TEXT,
			status TEXT NOT NULL,
			days_of_week TEXT,
			time_slot TEXT,
			start_date DATE,
			end_date DATE,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE one_time_reschedules (
			id TEXT PRIMARY KEY,
			class_id TEXT NOT NULL,
			from_date DATE NOT NULL,
			to_date DATE NOT NULL,
			time_slot TEXT NOT NULL,
			reason TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			created_at DATETIME,
			user_id TEXT,
			class_id TEXT,
			details TEXT
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	classRepo := repository.NewGormClassRepository(db)
	eventRepo := repository.NewGormEventRepository(db)
	h := NewHandler(
		service.NewTimetableService(classRepo, repository.NewGormTutorRepository(db), eventRepo),
		service.NewRescheduleService(classRepo, repository.NewGormRescheduleRepository(db), eventRepo),
		service.NewIdentityService(repository.NewGormUserRepository(db)),
	)

	app := fiber.New()
	Register(app, h)
	return app, db
}

func seedAPITutor(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()

	id := uuid.New()
	err := db.Create(&model.Tutor{
		ID:          id,
		UserID:      uuid.New(),
		DisplayName: "Tutor",
	}).Error
	if err != nil {
		t.Fatalf("seed tutor: %v", err)
	}
	return id
}

func seedAPIClass(t *testing.T, db *gorm.DB, tutorID uuid.UUID, name, daysJSON, slot string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	err := db.Create(&model.FinalClass{
		ID:         id,
		TutorID:    tutorID,
		Name:       name,
		Status:     model.ClassStatusActive,
		DaysOfWeek: datatypes.JSON(daysJSON),
		TimeSlot:   slot,
	}).Error
	if err != nil {
		t.Fatalf("seed class: %v", err)
	}
	return id
}

func TestUpdateSchedule_ConflictReturns409(t *testing.T) {
	app, db := newTestApp(t)
	tutorID := uuid.New()

	seedAPIClass(t, db, tutorID, "Algebra I", `["MONDAY","WEDNESDAY"]`, "09:00 - 10:30")
	target := seedAPIClass(t, db, tutorID, "Physics", `["FRIDAY"]`, "13:00 - 14:00")

	body := `{"schedule":{"daysOfWeek":["MONDAY"],"timeSlot":"10:00 - 11:00"}}`
	req := httptest.NewRequest("PUT", "/api/final-classes/"+target.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "clashes with another class") {
		t.Fatalf("unexpected error body: %s", raw)
	}
}

func TestUpdateSchedule_EmptyDaysReturns422(t *testing.T) {
	app, db := newTestApp(t)
	target := seedAPIClass(t, db, uuid.New(), "Physics", `["FRIDAY"]`, "13:00 - 14:00")

	body := `{"schedule":{"daysOfWeek":[],"timeSlot":"10:00 - 11:00"}}`
	req := httptest.NewRequest("PUT", "/api/final-classes/"+target.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "Please select at least one day") {
		t.Fatalf("unexpected error body: %s", raw)
	}
}

func TestUpdateSchedule_SuccessReturnsAuthoritativeCopy(t *testing.T) {
	app, db := newTestApp(t)
	target := seedAPIClass(t, db, uuid.New(), "Physics", `["FRIDAY"]`, "13:00 - 14:00")

	body := `{"schedule":{"daysOfWeek":["TUESDAY"],"timeSlot":"10:00 - 11:00"}}`
	req := httptest.NewRequest("PUT", "/api/final-classes/"+target.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got ClassResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Schedule.TimeSlot != "10:00 - 11:00" || len(got.Schedule.DaysOfWeek) != 1 || got.Schedule.DaysOfWeek[0] != "TUESDAY" {
		t.Fatalf("unexpected schedule in response: %+v", got.Schedule)
	}
}

func TestTutorCalendar(t *testing.T) {
	app, db := newTestApp(t)
	tutorID := seedAPITutor(t, db)
	seedAPIClass(t, db, tutorID, "Algebra I", `["MONDAY"]`, "16:00 - 17:00")

	req := httptest.NewRequest("GET", "/api/final-classes/tutor/"+tutorID.String()+"/calendar?year=2024&month=6", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var view struct {
		Days map[string][]struct {
			TimeSlot string `json:"timeSlot"`
		} `json:"days"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	// Понедельники июня 2024: 3, 10, 17, 24.
	if len(view.Days) != 4 {
		t.Fatalf("expected 4 scheduled days, got %v", view.Days)
	}
	if occs := view.Days["3"]; len(occs) != 1 || occs[0].TimeSlot != "16:00 - 17:00" {
		t.Fatalf("June 3: unexpected %v", occs)
	}
}

func TestTutorCalendar_UnknownTutorReturns404(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/final-classes/tutor/"+uuid.NewString()+"/calendar?year=2024&month=6", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListTutorClasses_Pagination(t *testing.T) {
	app, db := newTestApp(t)
	tutorID := seedAPITutor(t, db)
	for i := 0; i < 3; i++ {
		seedAPIClass(t, db, tutorID, "Class", `["MONDAY"]`, "09:00 - 10:00")
	}

	req := httptest.NewRequest("GET", "/api/final-classes/tutor/"+tutorID.String()+"?status=ACTIVE&page=2&limit=2", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var got ClassListResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 3 || len(got.Classes) != 1 {
		t.Fatalf("expected page 2 with 1 of 3 classes, got total=%d len=%d", got.Total, len(got.Classes))
	}
}

func TestCreateAndDeleteClassRoutes(t *testing.T) {
	app, db := newTestApp(t)
	tutorID := seedAPITutor(t, db)

	body := `{"tutorId":"` + tutorID.String() + `","name":"Algebra I","schedule":{"daysOfWeek":["MONDAY"],"timeSlot":"16:00 - 17:00"}}`
	req := httptest.NewRequest("POST", "/api/final-classes/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 201 (%s)", resp.StatusCode, raw)
	}

	var created ClassResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created class: %v", err)
	}
	if created.Schedule.TimeSlot != "16:00 - 17:00" || created.Status != "ACTIVE" {
		t.Fatalf("unexpected created class: %+v", created)
	}

	req = httptest.NewRequest("DELETE", "/api/final-classes/"+created.ID, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/final-classes/"+created.ID, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("deleted class must 404, got %d", resp.StatusCode)
	}
}

func TestListReschedulesRoute(t *testing.T) {
	app, db := newTestApp(t)
	classID := seedAPIClass(t, db, uuid.New(), "Algebra I", `["MONDAY"]`, "16:00 - 17:00")

	body := `{"fromDate":"2024-06-03","toDate":"2024-06-05","timeSlot":"18:00 - 19:00","reason":"tutor away"}`
	req := httptest.NewRequest("POST", "/api/final-classes/"+classID.String()+"/reschedules", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 201 (%s)", resp.StatusCode, raw)
	}

	req = httptest.NewRequest("GET", "/api/final-classes/"+classID.String()+"/reschedules", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var got RescheduleListResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 1 || len(got.Reschedules) != 1 {
		t.Fatalf("expected 1 reschedule, got %+v", got)
	}
	if got.Reschedules[0].ToDate != "2024-06-05" || got.Reschedules[0].Reason != "tutor away" {
		t.Fatalf("unexpected reschedule: %+v", got.Reschedules[0])
	}
}

func TestEventsRoute(t *testing.T) {
	app, db := newTestApp(t)
	target := seedAPIClass(t, db, uuid.New(), "Physics", `["FRIDAY"]`, "13:00 - 14:00")

	body := `{"schedule":{"daysOfWeek":["TUESDAY"],"timeSlot":"10:00 - 11:00"}}`
	req := httptest.NewRequest("PUT", "/api/final-classes/"+target.String(), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if _, err := app.Test(req); err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/events", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var events []EventResponse
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 || events[0].EventType != "schedule_updated" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].ClassID != target.String() {
		t.Fatalf("event must reference the class, got %q", events[0].ClassID)
	}
}

func TestErrorResponse_WrappedSentinelKeepsUserMessage(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errorResponse(c, fmt.Errorf("update schedule: %w", timetable.ErrScheduleConflict))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}

	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "clashes with another class") {
		t.Fatalf("wrapped sentinel must keep the user message, got %s", raw)
	}
}

func TestIdentityRoutes(t *testing.T) {
	app, _ := newTestApp(t)

	body := `{"email":"tutor@example.com","displayName":"A. Tutor"}`
	req := httptest.NewRequest("POST", "/api/users/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 201 (%s)", resp.StatusCode, raw)
	}

	body = `{"email":"tutor@example.com","roleCode":"tutor"}`
	req = httptest.NewRequest("PUT", "/api/users/role", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200 (%s)", resp.StatusCode, raw)
	}

	body = `{"email":"tutor@example.com","contactPhone":"+7 900 000-00-00"}`
	req = httptest.NewRequest("PUT", "/api/users/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200 (%s)", resp.StatusCode, raw)
	}

	req = httptest.NewRequest("GET", "/api/users/profile?email=tutor@example.com", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	var profile ProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.RoleCode != "tutor" {
		t.Fatalf("expected role tutor, got %q", profile.RoleCode)
	}
	if profile.ContactPhone != "+7 900 000-00-00" {
		t.Fatalf("profile update must persist the phone, got %q", profile.ContactPhone)
	}
}
