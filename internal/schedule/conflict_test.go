package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appt(id, date, start string, duration int, status Status) Appointment {
	end, _ := EndOf(start, duration)
	return Appointment{
		ID:          id,
		PatientID:   "P-1",
		PatientName: "Ana María Rodríguez",
		Type:        TypeConsulta,
		Date:        date,
		StartTime:   start,
		EndTime:     end,
		Duration:    duration,
		Status:      status,
		Reason:      "Revisión mensual",
	}
}

func TestConflictsExactSlot(t *testing.T) {
	appts := []Appointment{
		appt("a", "2024-09-04", "09:00", 30, StatusConfirmada),
		appt("b", "2024-09-04", "10:30", 30, StatusPendiente),
	}

	// either appointment placed onto the other's slot collides
	taken, err := Conflicts(appts, Candidate{ID: "b", Date: "2024-09-04", StartTime: "09:00"}, PolicyExactStart)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = Conflicts(appts, Candidate{ID: "a", Date: "2024-09-04", StartTime: "10:30"}, PolicyExactStart)
	require.NoError(t, err)
	assert.True(t, taken)

	// a brand-new booking with no id collides too
	taken, err = Conflicts(appts, Candidate{Date: "2024-09-04", StartTime: "09:00"}, PolicyExactStart)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestConflictsExcludesSelf(t *testing.T) {
	appts := []Appointment{appt("a", "2024-09-04", "09:00", 30, StatusConfirmada)}

	taken, err := Conflicts(appts, Candidate{ID: "a", Date: "2024-09-04", StartTime: "09:00"}, PolicyExactStart)
	require.NoError(t, err)
	assert.False(t, taken, "moving onto its own slot must pass")
}

func TestConflictsIgnoresDurationOverlapByDefault(t *testing.T) {
	// 09:00-10:00 does not block a 09:15 booking under the exact rule
	appts := []Appointment{appt("a", "2024-09-04", "09:00", 60, StatusConfirmada)}

	taken, err := Conflicts(appts, Candidate{Date: "2024-09-04", StartTime: "09:15", Duration: 30}, PolicyExactStart)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestConflictsOverlapPolicy(t *testing.T) {
	appts := []Appointment{appt("a", "2024-09-04", "09:00", 60, StatusConfirmada)}

	tests := []struct {
		name  string
		start string
		dur   int
		want  bool
	}{
		{"inside", "09:15", 30, true},
		{"straddles start", "08:45", 30, true},
		{"touches end", "10:00", 30, false},
		{"ends at start", "08:30", 30, false},
		{"covers whole", "08:30", 120, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken, err := Conflicts(appts, Candidate{Date: "2024-09-04", StartTime: tt.start, Duration: tt.dur}, PolicyOverlap)
			require.NoError(t, err)
			assert.Equal(t, tt.want, taken)
		})
	}
}

func TestConflictsCancelledFreesSlot(t *testing.T) {
	appts := []Appointment{appt("a", "2024-09-05", "14:00", 15, StatusCancelada)}

	taken, err := Conflicts(appts, Candidate{Date: "2024-09-05", StartTime: "14:00"}, PolicyExactStart)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestConflictsDifferentDay(t *testing.T) {
	appts := []Appointment{appt("a", "2024-09-04", "09:00", 30, StatusConfirmada)}

	taken, err := Conflicts(appts, Candidate{Date: "2024-09-05", StartTime: "09:00"}, PolicyExactStart)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestConflictsInvalidInput(t *testing.T) {
	appts := []Appointment{appt("a", "2024-09-04", "09:00", 30, StatusConfirmada)}

	_, err := Conflicts(appts, Candidate{Date: "not-a-date", StartTime: "09:00"}, PolicyExactStart)
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = Conflicts(appts, Candidate{Date: "2024-09-04", StartTime: "9 en punto"}, PolicyExactStart)
	assert.ErrorIs(t, err, ErrInvalidTime)
}
