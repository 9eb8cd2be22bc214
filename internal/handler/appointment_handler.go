package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"clinica-agenda-api/internal/schedule"
)

func (h *Handler) CreateAppointment(c echo.Context) error {
	var a schedule.Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if err := a.Validate(); err != nil {
		return domainError(err)
	}

	ctx := c.Request().Context()

	// app-level conflict check; the store backstops races
	cand := schedule.Candidate{Date: a.Date, StartTime: a.StartTime, Duration: a.Duration}
	if taken, err := h.appts.SlotTaken(ctx, cand); err != nil {
		return domainError(err)
	} else if taken {
		return domainError(schedule.ErrSlotTaken)
	}

	created, err := h.appts.Create(ctx, a)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	a, err := h.appts.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// appointmentPatch is the edit payload; absent fields stay untouched.
type appointmentPatch struct {
	PatientID    *string                   `json:"patient_id"`
	PatientName  *string                   `json:"patient_name"`
	PatientPhone *string                   `json:"patient_phone"`
	Type         *schedule.AppointmentType `json:"type"`
	Provider     *string                   `json:"provider"`
	Date         *string                   `json:"date"`
	StartTime    *string                   `json:"start_time"`
	Duration     *int                      `json:"duration"`
	Status       *schedule.Status          `json:"status"`
	Reason       *string                   `json:"reason"`
	Notes        *string                   `json:"notes"`
}

func (p *appointmentPatch) domain() schedule.Patch {
	return schedule.Patch{
		PatientID:    p.PatientID,
		PatientName:  p.PatientName,
		PatientPhone: p.PatientPhone,
		Type:         p.Type,
		Provider:     p.Provider,
		Date:         p.Date,
		StartTime:    p.StartTime,
		Duration:     p.Duration,
		Status:       p.Status,
		Reason:       p.Reason,
		Notes:        p.Notes,
	}
}

func (h *Handler) UpdateAppointment(c echo.Context) error {
	var p appointmentPatch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := h.appts.Get(ctx, id)
	if err != nil {
		return domainError(err)
	}

	// conflict check against the slot the edit lands on, excluding self
	cand := schedule.Candidate{
		ID:        id,
		Date:      existing.Date,
		StartTime: existing.StartTime,
		Duration:  existing.Duration,
	}
	if p.Date != nil {
		cand.Date = *p.Date
	}
	if p.StartTime != nil {
		cand.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		cand.Duration = *p.Duration
	}
	if taken, err := h.appts.SlotTaken(ctx, cand); err != nil {
		return domainError(err)
	} else if taken {
		return domainError(schedule.ErrSlotTaken)
	}

	updated, err := h.appts.Update(ctx, id, p.domain())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	if err := h.appts.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return domainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type moveRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
}

// MoveAppointment commits a drag-drop reschedule: same visit, new slot,
// duration preserved and end time shifted along.
func (h *Handler) MoveAppointment(c echo.Context) error {
	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := h.appts.Get(ctx, id)
	if err != nil {
		return domainError(err)
	}

	cand := schedule.Candidate{ID: id, Date: req.Date, StartTime: req.StartTime, Duration: existing.Duration}
	if taken, err := h.appts.SlotTaken(ctx, cand); err != nil {
		return domainError(err)
	} else if taken {
		return domainError(schedule.ErrSlotTaken)
	}

	moved, err := h.appts.Move(ctx, id, req.Date, req.StartTime)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, moved)
}

type statusRequest struct {
	Status schedule.Status `json:"status"`
}

func (h *Handler) SetAppointmentStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}

	ctx := c.Request().Context()
	id := c.Param("id")

	existing, err := h.appts.Get(ctx, id)
	if err != nil {
		return domainError(err)
	}

	// un-cancelling re-claims the slot, which may have been re-booked
	if existing.Status == schedule.StatusCancelada && req.Status != schedule.StatusCancelada {
		cand := schedule.Candidate{ID: id, Date: existing.Date, StartTime: existing.StartTime, Duration: existing.Duration}
		if taken, err := h.appts.SlotTaken(ctx, cand); err != nil {
			return domainError(err)
		} else if taken {
			return domainError(schedule.ErrSlotTaken)
		}
	}

	updated, err := h.appts.Update(ctx, id, schedule.Patch{Status: &req.Status})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// ListAppointments returns one day's agenda, optionally filtered by type
// and status, sorted by start time.
func (h *Handler) ListAppointments(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = schedule.FormatDate(time.Now())
	}
	if _, err := schedule.ParseDate(date); err != nil {
		return domainError(err)
	}

	appts, err := h.appts.ListByDate(c.Request().Context(), date)
	if err != nil {
		return domainError(err)
	}

	typ := c.QueryParam("type")
	status := c.QueryParam("status")
	filtered := appts[:0:0]
	for _, a := range appts {
		if typ != "" && string(a.Type) != typ {
			continue
		}
		if status != "" && string(a.Status) != status {
			continue
		}
		filtered = append(filtered, a)
	}
	schedule.SortByStart(filtered)

	return c.JSON(http.StatusOK, map[string]any{
		"date":         date,
		"appointments": filtered,
	})
}

func (h *Handler) AppointmentStats(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		date = schedule.FormatDate(time.Now())
	}
	if _, err := schedule.ParseDate(date); err != nil {
		return domainError(err)
	}

	appts, err := h.appts.ListByDate(c.Request().Context(), date)
	if err != nil {
		return domainError(err)
	}

	stats := map[string]int{
		"total":      len(appts),
		"pendiente":  0,
		"confirmada": 0,
		"cancelada":  0,
	}
	for _, a := range appts {
		stats[string(a.Status)]++
	}
	return c.JSON(http.StatusOK, map[string]any{"date": date, "stats": stats})
}
