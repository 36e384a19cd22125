package httpapi

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// NewApp собирает Fiber-приложение с базовыми middleware и маршрутами API.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Request-ID + тайминг (лёгкая наблюдаемость).
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		start := time.Now()
		err := c.Next()
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s",
			id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
		return err
	})

	Register(app, h)
	return app
}

// Register вешает маршруты API на приложение.
func Register(app *fiber.App, h *Handler) {
	api := app.Group("/api")

	classes := api.Group("/final-classes")
	classes.Post("/", h.CreateClass)
	classes.Get("/tutor/:tutorId", h.ListTutorClasses)
	classes.Get("/tutor/:tutorId/calendar", h.TutorCalendar)
	classes.Get("/student/:studentId/calendar", h.StudentCalendar)
	classes.Get("/:classId", h.GetClass)
	classes.Put("/:classId", h.UpdateSchedule)
	classes.Delete("/:classId", h.DeleteClass)
	classes.Get("/:classId/reschedules", h.ListReschedules)
	classes.Post("/:classId/reschedules", h.CreateReschedule)

	users := api.Group("/users")
	users.Post("/", h.RegisterUser)
	users.Put("/role", h.SetRole)
	users.Put("/profile", h.UpdateProfile)
	users.Get("/profile", h.GetProfile)

	api.Get("/events", h.ListEvents)
}
