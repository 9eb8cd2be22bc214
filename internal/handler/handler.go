package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"clinica-agenda-api/internal/model"
	"clinica-agenda-api/internal/schedule"
	"clinica-agenda-api/internal/store"
)

// AppointmentRepo is the appointment collection the handlers mutate.
// Implemented by the Postgres store and, in demo mode, by the in-memory
// book.
type AppointmentRepo interface {
	Create(ctx context.Context, a schedule.Appointment) (schedule.Appointment, error)
	Get(ctx context.Context, id string) (schedule.Appointment, error)
	Update(ctx context.Context, id string, p schedule.Patch) (schedule.Appointment, error)
	Delete(ctx context.Context, id string) error
	Move(ctx context.Context, id, newDate, newStart string) (schedule.Appointment, error)
	ListByDate(ctx context.Context, date string) ([]schedule.Appointment, error)
	ListRange(ctx context.Context, from, to string) ([]schedule.Appointment, error)
	SlotTaken(ctx context.Context, cand schedule.Candidate) (bool, error)
}

// PatientDirectory is the read-mostly patient lookup behind the booking
// form.
type PatientDirectory interface {
	SearchPatients(ctx context.Context, q string) ([]model.Patient, error)
	GetPatient(ctx context.Context, id string) (model.Patient, error)
	CreatePatient(ctx context.Context, p *model.Patient) error
	UpdatePatient(ctx context.Context, p *model.Patient) error
}

// UserStore is the account and refresh-token storage. Only the Postgres
// store provides it; demo mode has no accounts and no auth.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*store.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// CalendarConfig carries the office-hours grid settings into the
// calendar endpoints.
type CalendarConfig struct {
	OpeningHour    int
	ClosingHour    int
	SlotMinutes    int
	WeekStartsOn   time.Weekday
	MonthMaxPerDay int
}

type Handler struct {
	appts    AppointmentRepo
	patients PatientDirectory
	users    UserStore // nil in demo mode
	secret   string
	cal      CalendarConfig
}

func New(appts AppointmentRepo, patients PatientDirectory, users UserStore, secret string, cal CalendarConfig) *Handler {
	return &Handler{appts: appts, patients: patients, users: users, secret: secret, cal: cal}
}

// Middlewares are the cross-cutting wrappers the routes need; either may
// be nil (demo mode disables auth, tests skip rate limiting).
type Middlewares struct {
	Auth      echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

func (h *Handler) RegisterRoutes(e *echo.Echo, mw Middlewares) {
	e.GET("/healthz", h.Health)

	if h.users != nil {
		authGroup := e.Group("/v1/auth")
		if mw.RateLimit != nil {
			authGroup.Use(mw.RateLimit)
		}
		authGroup.POST("/register", h.RegisterUser)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
	}

	api := e.Group("/v1")
	if mw.Auth != nil {
		api.Use(mw.Auth)
	}

	api.GET("/patients", h.SearchPatients)
	api.POST("/patients", h.CreatePatient)
	api.GET("/patients/:id", h.GetPatient)
	api.PUT("/patients/:id", h.UpdatePatient)

	api.GET("/appointments", h.ListAppointments)
	api.GET("/appointments/stats", h.AppointmentStats)
	api.POST("/appointments", h.CreateAppointment)
	api.GET("/appointments/:id", h.GetAppointment)
	api.PUT("/appointments/:id", h.UpdateAppointment)
	api.DELETE("/appointments/:id", h.DeleteAppointment)
	api.POST("/appointments/:id/move", h.MoveAppointment)
	api.POST("/appointments/:id/status", h.SetAppointmentStatus)

	api.GET("/calendar/week", h.WeekView)
	api.GET("/calendar/month", h.MonthView)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// domainError maps domain failures onto the HTTP surface. Validation
// problems keep their per-field detail so the form can show them inline.
func domainError(err error) error {
	var ve schedule.ValidationError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": map[string]string(ve),
		})
	case errors.Is(err, schedule.ErrNotFound), errors.Is(err, store.ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, schedule.ErrSlotTaken):
		return echo.NewHTTPError(http.StatusConflict, "conflicto de horario: el horario ya está ocupado")
	case errors.Is(err, store.ErrPatientExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrInvalidTime):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
