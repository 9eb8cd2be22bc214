package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name      string
		anchor    time.Time
		wantFirst string
	}{
		{"midweek", date(2024, time.September, 4), "2024-09-02"},
		{"on week start", date(2024, time.September, 2), "2024-09-02"},
		{"sunday belongs to previous monday", date(2024, time.September, 8), "2024-09-02"},
		{"leap february end", date(2024, time.February, 29), "2024-02-26"},
		{"year boundary", date(2024, time.December, 31), "2024-12-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := WeekRange(tt.anchor, time.Monday)
			require.Len(t, days, 7)
			assert.Equal(t, tt.wantFirst, FormatDate(days[0]))
			assert.Equal(t, time.Monday, days[0].Weekday())
			for i := 1; i < 7; i++ {
				assert.Equal(t, days[i-1].AddDate(0, 0, 1), days[i], "days must be consecutive")
			}
		})
	}
}

func TestWeekRangeConfigurableStart(t *testing.T) {
	days := WeekRange(date(2024, time.September, 4), time.Sunday)
	require.Len(t, days, 7)
	assert.Equal(t, "2024-09-01", FormatDate(days[0]))
	assert.Equal(t, time.Sunday, days[0].Weekday())
}

func TestMonthRange(t *testing.T) {
	for _, anchor := range []time.Time{
		date(2024, time.September, 15),
		date(2024, time.February, 1),  // leap February
		date(2024, time.December, 31), // year boundary
		date(2025, time.June, 30),     // month starting on Sunday
	} {
		t.Run(FormatDate(anchor), func(t *testing.T) {
			days := MonthRange(anchor, time.Monday)
			require.NotEmpty(t, days)
			assert.Zero(t, len(days)%7, "must be whole weeks")
			assert.Equal(t, time.Monday, days[0].Weekday())

			covered := make(map[string]bool, len(days))
			for _, d := range days {
				covered[FormatDate(d)] = true
			}
			last := date(anchor.Year(), anchor.Month(), 1).AddDate(0, 1, -1)
			for d := 1; d <= last.Day(); d++ {
				assert.True(t, covered[FormatDate(date(anchor.Year(), anchor.Month(), d))],
					"day %d of the month must be in range", d)
			}
		})
	}
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots(8, 20, 30)
	require.Len(t, slots, 24)
	assert.Equal(t, "08:00", slots[0])
	assert.Equal(t, "08:30", slots[1])
	assert.Equal(t, "19:30", slots[len(slots)-1])
}

func TestBucketWeek(t *testing.T) {
	days := WeekRange(date(2024, time.September, 4), time.Monday)
	slots := TimeSlots(8, 20, 30)

	onGrid := appt("a", "2024-09-04", "09:00", 30, StatusConfirmada)
	offGrid := appt("b", "2024-09-04", "09:15", 30, StatusPendiente)
	otherWeek := appt("c", "2024-09-20", "09:00", 30, StatusPendiente)

	grid := BucketWeek([]Appointment{onGrid, offGrid, otherWeek}, days, slots)

	cell := grid.Cells[SlotKey{Date: "2024-09-04", Time: "09:00"}]
	require.Len(t, cell, 1)
	assert.Equal(t, "a", cell[0].ID)

	// the off-grid appointment lands in no cell at all
	for k, appts := range grid.Cells {
		for _, a := range appts {
			assert.NotEqual(t, "b", a.ID, "off-grid appointment leaked into cell %v", k)
		}
	}
	// but it is not lost: it sits in the day's unplaced lane
	require.Len(t, grid.Unplaced["2024-09-04"], 1)
	assert.Equal(t, "b", grid.Unplaced["2024-09-04"][0].ID)

	// appointments outside the visible week are ignored entirely
	assert.Empty(t, grid.Unplaced["2024-09-20"])
}

func TestBucketMonth(t *testing.T) {
	days := MonthRange(date(2024, time.September, 15), time.Monday)

	appts := []Appointment{
		appt("a", "2024-09-04", "10:30", 30, StatusConfirmada),
		appt("b", "2024-09-04", "09:00", 30, StatusPendiente),
		appt("c", "2024-09-04", "09:15", 30, StatusPendiente), // off-grid still counts here
		appt("d", "2024-09-05", "14:00", 15, StatusCancelada),
	}

	cells := BucketMonth(appts, days, 2)

	day4 := cells["2024-09-04"]
	assert.Equal(t, 3, day4.Total)
	require.Len(t, day4.Appointments, 2)
	assert.Equal(t, 1, day4.Overflow)
	// visible slice is sorted by start time
	assert.Equal(t, "b", day4.Appointments[0].ID)
	assert.Equal(t, "c", day4.Appointments[1].ID)

	day5 := cells["2024-09-05"]
	assert.Equal(t, 1, day5.Total)
	assert.Zero(t, day5.Overflow)

	// empty visible days still have a cell
	empty, ok := cells["2024-09-10"]
	require.True(t, ok)
	assert.Zero(t, empty.Total)
}
