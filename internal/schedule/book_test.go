package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(date, start string, duration int) Appointment {
	return Appointment{
		PatientID:   "P-2024-001",
		PatientName: "Ana María Rodríguez",
		Type:        TypeConsulta,
		Date:        date,
		StartTime:   start,
		Duration:    duration,
		Reason:      "Revisión mensual",
	}
}

func TestBookCreate(t *testing.T) {
	b := NewBook(PolicyExactStart)

	a, err := b.Create(draft("2024-09-04", "09:00", 30))
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, StatusPendiente, a.Status, "status defaults to pendiente")
	assert.Equal(t, "09:30", a.EndTime, "end time is derived from start and duration")
	assert.False(t, a.CreatedAt.IsZero())
}

func TestBookCreateValidation(t *testing.T) {
	b := NewBook(PolicyExactStart)

	tests := []struct {
		name    string
		mutate  func(*Appointment)
		field   string
	}{
		{"missing patient", func(a *Appointment) { a.PatientID = "" }, "patient_id"},
		{"missing date", func(a *Appointment) { a.Date = "" }, "date"},
		{"garbage date", func(a *Appointment) { a.Date = "04/09/2024" }, "date"},
		{"missing start", func(a *Appointment) { a.StartTime = "" }, "start_time"},
		{"blank reason", func(a *Appointment) { a.Reason = "   " }, "reason"},
		{"unknown type", func(a *Appointment) { a.Type = "peluqueria" }, "type"},
		{"odd duration", func(a *Appointment) { a.Duration = 37 }, "duration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft("2024-09-04", "09:00", 30)
			tt.mutate(&d)
			_, err := b.Create(d)
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve, tt.field)
		})
	}
}

// The booking lifecycle from the front desk's point of view: book A,
// get blocked trying to double-book B, move A away, and the freed slot
// accepts C.
func TestBookConflictLifecycle(t *testing.T) {
	b := NewBook(PolicyExactStart)

	a, err := b.Create(draft("2024-09-04", "09:00", 30))
	require.NoError(t, err)
	assert.Equal(t, "09:30", a.EndTime)

	_, err = b.Create(draft("2024-09-04", "09:00", 30))
	assert.ErrorIs(t, err, ErrSlotTaken)

	moved, err := b.Move(a.ID, "2024-09-04", "10:00")
	require.NoError(t, err)
	assert.Equal(t, "10:00", moved.StartTime)
	assert.Equal(t, "10:30", moved.EndTime, "moving shifts the end time along")

	c, err := b.Create(draft("2024-09-04", "09:00", 30))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestBookMoveAcrossDays(t *testing.T) {
	b := NewBook(PolicyExactStart)

	a, err := b.Create(draft("2024-09-04", "09:00", 45))
	require.NoError(t, err)

	_, err = b.Move(a.ID, "2024-09-06", "11:30")
	require.NoError(t, err)

	oldDay := b.ListByDate("2024-09-04")
	assert.Empty(t, oldDay, "old day no longer lists the appointment")

	newDay := b.ListByDate("2024-09-06")
	require.Len(t, newDay, 1, "new day lists it exactly once")
	assert.Equal(t, a.ID, newDay[0].ID)
	assert.Equal(t, "12:15", newDay[0].EndTime)
	assert.Equal(t, 45, newDay[0].Duration, "duration survives the move")
}

func TestBookMoveRejectsOccupiedAndBadInput(t *testing.T) {
	b := NewBook(PolicyExactStart)

	a, err := b.Create(draft("2024-09-04", "09:00", 30))
	require.NoError(t, err)
	_, err = b.Create(draft("2024-09-04", "10:00", 30))
	require.NoError(t, err)

	_, err = b.Move(a.ID, "2024-09-04", "10:00")
	assert.ErrorIs(t, err, ErrSlotTaken)

	_, err = b.Move(a.ID, "mañana", "10:00")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = b.Move("no-such-id", "2024-09-04", "11:00")
	assert.ErrorIs(t, err, ErrNotFound)

	// the failed moves left the appointment where it was
	got, err := b.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", got.StartTime)
}

func TestBookUpdate(t *testing.T) {
	b := NewBook(PolicyExactStart)

	a, err := b.Create(draft("2024-09-04", "09:00", 30))
	require.NoError(t, err)

	newDur := 60
	newStatus := StatusConfirmada
	newNotes := "Control de herida quirúrgica"
	updated, err := b.Update(a.ID, Patch{Duration: &newDur, Status: &newStatus, Notes: &newNotes})
	require.NoError(t, err)

	assert.Equal(t, "10:00", updated.EndTime, "end time follows the new duration")
	assert.Equal(t, StatusConfirmada, updated.Status)
	assert.Equal(t, newNotes, updated.Notes)
	assert.Equal(t, "09:00", updated.StartTime, "unpatched fields stay put")

	badDur := 37
	_, err = b.Update(a.ID, Patch{Duration: &badDur})
	var ve ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = b.Update("no-such-id", Patch{Duration: &newDur})
	assert.ErrorIs(t, err, ErrNotFound)
}

// Cancelling frees a slot, and once someone else books it the cancelled
// visit cannot come back to life on top of them.
func TestBookUpdateReactivationConflict(t *testing.T) {
	b := NewBook(PolicyExactStart)

	a, err := b.Create(draft("2024-09-04", "09:00", 30))
	require.NoError(t, err)

	cancelled := StatusCancelada
	_, err = b.Update(a.ID, Patch{Status: &cancelled})
	require.NoError(t, err)

	_, err = b.Create(draft("2024-09-04", "09:00", 30))
	require.NoError(t, err)

	confirmed := StatusConfirmada
	_, err = b.Update(a.ID, Patch{Status: &confirmed})
	assert.ErrorIs(t, err, ErrSlotTaken)

	got, err := b.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelada, got.Status, "rejected update leaves the record untouched")

	// after moving to a free slot the reactivation goes through
	_, err = b.Move(a.ID, "2024-09-04", "11:00")
	require.NoError(t, err)
	reactivated, err := b.Update(a.ID, Patch{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmada, reactivated.Status)
}

func TestBookRemove(t *testing.T) {
	b := NewBook(PolicyExactStart)

	a, err := b.Create(draft("2024-09-04", "09:00", 30))
	require.NoError(t, err)

	require.NoError(t, b.Remove(a.ID))
	assert.ErrorIs(t, b.Remove(a.ID), ErrNotFound, "delete is destructive, not idempotent")

	_, err = b.Get(a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookListRange(t *testing.T) {
	b := NewBook(PolicyExactStart)

	for _, d := range []string{"2024-09-02", "2024-09-04", "2024-09-08", "2024-09-15"} {
		_, err := b.Create(draft(d, "09:00", 30))
		require.NoError(t, err)
	}

	got := b.ListRange("2024-09-02", "2024-09-08")
	require.Len(t, got, 3)
	assert.Equal(t, "2024-09-02", got[0].Date)
	assert.Equal(t, "2024-09-08", got[2].Date)
}

func TestClockMath(t *testing.T) {
	end, err := EndOf("09:00", 30)
	require.NoError(t, err)
	assert.Equal(t, "09:30", end)

	end, err = EndOf("23:30", 60)
	require.NoError(t, err)
	assert.Equal(t, "00:30", end, "minute-granularity wraparound past midnight")

	_, err = EndOf("25:00", 30)
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestSeedDemo(t *testing.T) {
	b := NewBook(PolicyExactStart)
	require.NoError(t, SeedDemo(b))

	all := b.ListRange("0000-01-01", "9999-12-31")
	assert.Len(t, all, 3)
}
