package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"clinica-agenda-api/internal/schedule"
)

type weekSlot struct {
	Time         string                 `json:"time"`
	Appointments []schedule.Appointment `json:"appointments,omitempty"`
}

type weekDay struct {
	Date     string                 `json:"date"`
	Slots    []weekSlot             `json:"slots"`
	Unplaced []schedule.Appointment `json:"unplaced,omitempty"`
}

type weekResponse struct {
	Anchor string    `json:"anchor"`
	Days   []weekDay `json:"days"`
}

// WeekView renders the week containing anchor as a date × time-slot
// grid. Off-grid appointments surface in each day's unplaced lane.
func (h *Handler) WeekView(c echo.Context) error {
	anchor, err := h.anchorDate(c)
	if err != nil {
		return domainError(err)
	}

	days := schedule.WeekRange(anchor, h.cal.WeekStartsOn)
	slots := schedule.TimeSlots(h.cal.OpeningHour, h.cal.ClosingHour, h.cal.SlotMinutes)

	appts, err := h.appts.ListRange(c.Request().Context(),
		schedule.FormatDate(days[0]), schedule.FormatDate(days[len(days)-1]))
	if err != nil {
		return domainError(err)
	}

	grid := schedule.BucketWeek(appts, days, slots)

	resp := weekResponse{Anchor: schedule.FormatDate(anchor)}
	for _, d := range days {
		date := schedule.FormatDate(d)
		day := weekDay{Date: date, Unplaced: grid.Unplaced[date]}
		for _, s := range slots {
			day.Slots = append(day.Slots, weekSlot{
				Time:         s,
				Appointments: grid.Cells[schedule.SlotKey{Date: date, Time: s}],
			})
		}
		resp.Days = append(resp.Days, day)
	}
	return c.JSON(http.StatusOK, resp)
}

type monthDay struct {
	Date         string                 `json:"date"`
	InMonth      bool                   `json:"in_month"`
	Appointments []schedule.Appointment `json:"appointments,omitempty"`
	Overflow     int                    `json:"overflow,omitempty"`
	Total        int                    `json:"total"`
}

type monthResponse struct {
	Anchor string     `json:"anchor"`
	Days   []monthDay `json:"days"`
}

// MonthView renders the full weeks covering anchor's month, bucketing by
// date only with a display cap per day.
func (h *Handler) MonthView(c echo.Context) error {
	anchor, err := h.anchorDate(c)
	if err != nil {
		return domainError(err)
	}

	days := schedule.MonthRange(anchor, h.cal.WeekStartsOn)

	appts, err := h.appts.ListRange(c.Request().Context(),
		schedule.FormatDate(days[0]), schedule.FormatDate(days[len(days)-1]))
	if err != nil {
		return domainError(err)
	}

	cells := schedule.BucketMonth(appts, days, h.cal.MonthMaxPerDay)

	resp := monthResponse{Anchor: schedule.FormatDate(anchor)}
	for _, d := range days {
		date := schedule.FormatDate(d)
		cell := cells[date]
		resp.Days = append(resp.Days, monthDay{
			Date:         date,
			InMonth:      d.Month() == anchor.Month(),
			Appointments: cell.Appointments,
			Overflow:     cell.Overflow,
			Total:        cell.Total,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) anchorDate(c echo.Context) (time.Time, error) {
	if s := c.QueryParam("anchor"); s != "" {
		return schedule.ParseDate(s)
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
}
