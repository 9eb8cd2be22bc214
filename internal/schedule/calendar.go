package schedule

import "time"

// Office hours: a fixed half-hour grid from 08:00 up to (not including)
// 20:00. Overridable through config; these are the defaults.
const (
	DefaultOpeningHour = 8
	DefaultClosingHour = 20
	DefaultSlotMinutes = 30
)

// WeekRange returns the 7 consecutive days of the calendar week
// containing anchor, starting on weekStartsOn (Monday for this office).
// The returned times are date-only, in anchor's location.
func WeekRange(anchor time.Time, weekStartsOn time.Weekday) []time.Time {
	anchor = truncateDay(anchor)
	offset := (int(anchor.Weekday()) - int(weekStartsOn) + 7) % 7
	start := anchor.AddDate(0, 0, -offset)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// MonthRange returns every day of the full calendar weeks covering the
// month containing anchor. The result is always a multiple of 7 days and
// may include trailing days of the previous month and leading days of
// the next one.
func MonthRange(anchor time.Time, weekStartsOn time.Weekday) []time.Time {
	anchor = truncateDay(anchor)
	monthStart := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	week := WeekRange(monthStart, weekStartsOn)
	var days []time.Time
	for {
		days = append(days, week...)
		if !week[6].Before(monthEnd) {
			return days
		}
		week = WeekRange(week[6].AddDate(0, 0, 1), weekStartsOn)
	}
}

// TimeSlots generates the HH:MM grid lines from startHour (inclusive) to
// endHour (exclusive) every stepMinutes.
func TimeSlots(startHour, endHour, stepMinutes int) []string {
	var slots []string
	for min := startHour * 60; min < endHour*60; min += stepMinutes {
		slots = append(slots, FormatClock(min))
	}
	return slots
}

// SlotKey addresses one cell of the week grid.
type SlotKey struct {
	Date string
	Time string
}

// WeekGrid is the bucketed week view. Cells maps each (date, slot) pair
// with at least one appointment; Unplaced carries, per date, the
// appointments whose start time falls inside the visible days but on no
// grid line, so off-grid bookings still render in an overflow lane
// instead of vanishing.
type WeekGrid struct {
	Cells    map[SlotKey][]Appointment
	Unplaced map[string][]Appointment
}

// BucketWeek groups appts into the (date, time) cells spanned by days and
// slots. Matching is exact: date equality against the visible days and
// string equality of StartTime against the grid lines. Appointments
// outside days are ignored entirely.
func BucketWeek(appts []Appointment, days []time.Time, slots []string) WeekGrid {
	visible := make(map[string]bool, len(days))
	for _, d := range days {
		visible[FormatDate(d)] = true
	}
	onGrid := make(map[string]bool, len(slots))
	for _, s := range slots {
		onGrid[s] = true
	}

	grid := WeekGrid{
		Cells:    make(map[SlotKey][]Appointment),
		Unplaced: make(map[string][]Appointment),
	}
	for _, a := range appts {
		if !visible[a.Date] {
			continue
		}
		if !onGrid[a.StartTime] {
			grid.Unplaced[a.Date] = append(grid.Unplaced[a.Date], a)
			continue
		}
		k := SlotKey{Date: a.Date, Time: a.StartTime}
		grid.Cells[k] = append(grid.Cells[k], a)
	}
	return grid
}

// DayCell is one day of the month view: the first few appointments for
// display density, plus how many more were folded into the "+n más"
// counter.
type DayCell struct {
	Appointments []Appointment
	Overflow     int
	Total        int
}

// BucketMonth groups appts by date only. Every appointment on a visible
// day counts, aligned to the slot grid or not. At most maxPerDay
// appointments are kept per cell, sorted by start time.
func BucketMonth(appts []Appointment, days []time.Time, maxPerDay int) map[string]DayCell {
	byDate := make(map[string][]Appointment)
	for _, d := range days {
		byDate[FormatDate(d)] = nil
	}
	for _, a := range appts {
		if _, ok := byDate[a.Date]; !ok {
			continue
		}
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	cells := make(map[string]DayCell, len(byDate))
	for date, list := range byDate {
		SortByStart(list)
		cell := DayCell{Total: len(list)}
		if maxPerDay > 0 && len(list) > maxPerDay {
			cell.Appointments = list[:maxPerDay]
			cell.Overflow = len(list) - maxPerDay
		} else {
			cell.Appointments = list
		}
		cells[date] = cell
	}
	return cells
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
