package schedule

// ConflictPolicy selects how two appointments are judged to collide.
type ConflictPolicy int

const (
	// PolicyExactStart flags a conflict only when another appointment
	// starts at exactly the same date and HH:MM. A 09:00–10:00 visit
	// does not block a 09:15 booking under this rule. This matches the
	// office's historical behavior and is the default.
	PolicyExactStart ConflictPolicy = iota
	// PolicyOverlap flags a conflict when the candidate's
	// [start, start+duration) interval intersects another appointment's
	// interval on the same date.
	PolicyOverlap
)

// Candidate is a prospective placement: creating a new appointment or
// moving an existing one to a slot. ID, when non-empty, excludes the
// appointment itself from the check so a move onto its own slot passes.
type Candidate struct {
	ID        string
	Date      string
	StartTime string
	// Duration is only consulted under PolicyOverlap.
	Duration int
}

// Conflicts reports whether placing cand would collide with any
// appointment in appts under the given policy.
//
// Cancelled appointments never block a slot: a freed slot is bookable
// again even though the cancelled record is still on file.
//
// Invalid candidate dates or times are an error, never a silent
// "no conflict".
func Conflicts(appts []Appointment, cand Candidate, policy ConflictPolicy) (bool, error) {
	candDate, err := ParseDate(cand.Date)
	if err != nil {
		return false, err
	}
	candStart, err := ParseClock(cand.StartTime)
	if err != nil {
		return false, err
	}
	candEnd := candStart + cand.Duration

	for i := range appts {
		a := &appts[i]
		if a.ID == cand.ID || a.Status == StatusCancelada {
			continue
		}
		aDate, err := ParseDate(a.Date)
		if err != nil {
			return false, err
		}
		// Calendar-day equality, never timestamp equality.
		if !aDate.Equal(candDate) {
			continue
		}
		switch policy {
		case PolicyOverlap:
			aStart, err := ParseClock(a.StartTime)
			if err != nil {
				return false, err
			}
			if aStart < candEnd && aStart+a.Duration > candStart {
				return true, nil
			}
		default:
			if a.StartTime == cand.StartTime {
				return true, nil
			}
		}
	}
	return false, nil
}
