// Package schedule holds the scheduling domain: the appointment model,
// the in-memory appointment book, slot conflict detection and the
// week/month calendar grid. Everything here is storage-agnostic; the
// Postgres store mirrors these semantics for persistent deployments.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DateLayout is the wire format for calendar dates. Dates are
	// timezone-naive: two appointments are on the same day iff their
	// formatted dates are equal.
	DateLayout = "2006-01-02"
	// ClockLayout is the wire format for wall-clock times, 24-hour.
	ClockLayout = "15:04"
)

type AppointmentType string

const (
	TypeConsulta    AppointmentType = "consulta"
	TypeRevision    AppointmentType = "revision"
	TypeUrgencia    AppointmentType = "urgencia"
	TypeSeguimiento AppointmentType = "seguimiento"
	TypeCirugia     AppointmentType = "cirugia"
)

type Status string

const (
	StatusPendiente  Status = "pendiente"
	StatusConfirmada Status = "confirmada"
	StatusCancelada  Status = "cancelada"
)

var (
	ErrNotFound    = errors.New("appointment not found")
	ErrSlotTaken   = errors.New("time slot already taken")
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
)

// validDurations are the bookable visit lengths, in minutes.
var validDurations = map[int]bool{15: true, 30: true, 45: true, 60: true, 90: true, 120: true}

var validTypes = map[AppointmentType]bool{
	TypeConsulta:    true,
	TypeRevision:    true,
	TypeUrgencia:    true,
	TypeSeguimiento: true,
	TypeCirugia:     true,
}

var validStatuses = map[Status]bool{
	StatusPendiente:  true,
	StatusConfirmada: true,
	StatusCancelada:  true,
}

// Appointment is a booked visit. Patient fields are denormalized copies
// taken from the directory at booking time, not live references.
type Appointment struct {
	ID           string          `json:"id"`
	PatientID    string          `json:"patient_id"`
	PatientName  string          `json:"patient_name"`
	PatientPhone string          `json:"patient_phone,omitempty"`
	Type         AppointmentType `json:"type"`
	Provider     string          `json:"provider,omitempty"`
	Date         string          `json:"date"`
	StartTime    string          `json:"start_time"`
	EndTime      string          `json:"end_time"`
	Duration     int             `json:"duration"`
	Status       Status          `json:"status"`
	Reason       string          `json:"reason"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at,omitzero"`
	UpdatedAt    time.Time       `json:"updated_at,omitzero"`
}

// ValidationError maps a field name to what is wrong with it, so the
// form can surface errors inline next to the offending field.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Validate checks the fields required at booking time. Status and
// EndTime are derived, not validated here.
func (a *Appointment) Validate() error {
	errs := ValidationError{}
	if a.PatientID == "" {
		errs["patient_id"] = "seleccione un paciente"
	}
	if _, err := ParseDate(a.Date); err != nil {
		errs["date"] = "seleccione una fecha válida"
	}
	if _, err := ParseClock(a.StartTime); err != nil {
		errs["start_time"] = "seleccione una hora válida"
	}
	if strings.TrimSpace(a.Reason) == "" {
		errs["reason"] = "ingrese el motivo de la cita"
	}
	if !validTypes[a.Type] {
		errs["type"] = "tipo de cita desconocido"
	}
	if !validDurations[a.Duration] {
		errs["duration"] = "duración no permitida"
	}
	if a.Status != "" && !validStatuses[a.Status] {
		errs["status"] = "estado desconocido"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// NewAppointment turns a draft into a bookable record: status defaults
// to pendiente, the id is assigned, EndTime is derived from the start
// and duration. Conflict checking is not done here; the book and the
// Postgres store each guard their own collection.
func NewAppointment(a Appointment) (Appointment, error) {
	if a.Status == "" {
		a.Status = StatusPendiente
	}
	if err := a.Validate(); err != nil {
		return Appointment{}, err
	}
	end, err := EndOf(a.StartTime, a.Duration)
	if err != nil {
		return Appointment{}, err
	}
	a.ID = uuid.New().String()
	a.EndTime = end
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	return a, nil
}

// ParseDate parses an ISO calendar date. Anything that does not round-trip
// through DateLayout is rejected, so "2024-2-3" and timestamps both fail.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate renders t as a timezone-naive calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseClock parses an HH:MM wall-clock time into minutes since midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes-since-midnight as HH:MM, wrapping past
// midnight at minute granularity. Cross-midnight visits are not a thing
// this office supports; the wrap only matters for degenerate input.
func FormatClock(min int) string {
	min %= 24 * 60
	if min < 0 {
		min += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// EndOf computes the end time for a visit starting at start and lasting
// duration minutes.
func EndOf(start string, duration int) (string, error) {
	min, err := ParseClock(start)
	if err != nil {
		return "", err
	}
	return FormatClock(min + duration), nil
}

// SortByStart orders appointments by start time, for agenda rendering.
// Ties keep their relative (insertion) order.
func SortByStart(appts []Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		return appts[i].StartTime < appts[j].StartTime
	})
}
