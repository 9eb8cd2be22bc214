package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"clinica-agenda-api/internal/schedule"
)

const apptColumns = `id, patient_id, patient_name, patient_phone, type, provider,
	appt_date, start_time, end_time, duration, status, reason, notes,
	created_at, updated_at`

// Create normalizes and inserts the appointment. The partial unique
// index on busy slots catches races the app-level conflict check missed.
func (s *Store) Create(ctx context.Context, a schedule.Appointment) (schedule.Appointment, error) {
	a, err := schedule.NewAppointment(a)
	if err != nil {
		return schedule.Appointment{}, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO appointments
		   (id, patient_id, patient_name, patient_phone, type, provider,
		    appt_date, start_time, end_time, duration, status, reason, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		a.ID, a.PatientID, a.PatientName, a.PatientPhone, a.Type, a.Provider,
		a.Date, a.StartTime, a.EndTime, a.Duration, a.Status, a.Reason, a.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return schedule.Appointment{}, schedule.ErrSlotTaken
		}
		return schedule.Appointment{}, err
	}
	return a, nil
}

func (s *Store) Get(ctx context.Context, id string) (schedule.Appointment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

// Update loads the row, merges the patch and writes the result back in
// one transaction.
func (s *Store) Update(ctx context.Context, id string, p schedule.Patch) (schedule.Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return schedule.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return schedule.Appointment{}, err
	}

	if err := p.Apply(&a); err != nil {
		return schedule.Appointment{}, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE appointments
		 SET patient_id=$1, patient_name=$2, patient_phone=$3, type=$4, provider=$5,
		     appt_date=$6, start_time=$7, end_time=$8, duration=$9, status=$10,
		     reason=$11, notes=$12, updated_at=NOW()
		 WHERE id=$13`,
		a.PatientID, a.PatientName, a.PatientPhone, a.Type, a.Provider,
		a.Date, a.StartTime, a.EndTime, a.Duration, a.Status,
		a.Reason, a.Notes, a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return schedule.Appointment{}, schedule.ErrSlotTaken
		}
		return schedule.Appointment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return schedule.Appointment{}, err
	}
	return a, nil
}

// Delete removes the row outright; cancelling is a status change, not a
// delete.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

// Move reschedules the appointment, recomputing end_time from the kept
// duration.
func (s *Store) Move(ctx context.Context, id, newDate, newStart string) (schedule.Appointment, error) {
	if _, err := schedule.ParseDate(newDate); err != nil {
		return schedule.Appointment{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return schedule.Appointment{}, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+apptColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return schedule.Appointment{}, err
	}

	end, err := schedule.EndOf(newStart, a.Duration)
	if err != nil {
		return schedule.Appointment{}, err
	}
	a.Date = newDate
	a.StartTime = newStart
	a.EndTime = end
	a.UpdatedAt = time.Now()

	_, err = tx.Exec(ctx,
		`UPDATE appointments
		 SET appt_date=$1, start_time=$2, end_time=$3, updated_at=NOW()
		 WHERE id=$4`,
		a.Date, a.StartTime, a.EndTime, a.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return schedule.Appointment{}, schedule.ErrSlotTaken
		}
		return schedule.Appointment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return schedule.Appointment{}, err
	}
	return a, nil
}

func (s *Store) ListByDate(ctx context.Context, date string) ([]schedule.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apptColumns+` FROM appointments
		 WHERE appt_date = $1 ORDER BY created_at`, date)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (s *Store) ListRange(ctx context.Context, from, to string) ([]schedule.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+apptColumns+` FROM appointments
		 WHERE appt_date >= $1 AND appt_date <= $2
		 ORDER BY appt_date, start_time`, from, to)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

// SlotTaken reports whether another non-cancelled appointment occupies
// the candidate slot. Under the overlap rule the intervals are compared
// on minutes-since-midnight rather than exact starts.
func (s *Store) SlotTaken(ctx context.Context, cand schedule.Candidate) (bool, error) {
	if _, err := schedule.ParseDate(cand.Date); err != nil {
		return false, err
	}
	start, err := schedule.ParseClock(cand.StartTime)
	if err != nil {
		return false, err
	}

	var q string
	args := []any{cand.Date, cand.ID}
	if s.policy == schedule.PolicyOverlap {
		q = `SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE appt_date = $1
			  AND id != $2
			  AND status != 'cancelada'
			  AND (split_part(start_time, ':', 1)::int * 60 + split_part(start_time, ':', 2)::int) < $4
			  AND (split_part(start_time, ':', 1)::int * 60 + split_part(start_time, ':', 2)::int) + duration > $3)`
		args = append(args, start, start+cand.Duration)
	} else {
		q = `SELECT EXISTS(
			SELECT 1 FROM appointments
			WHERE appt_date = $1
			  AND id != $2
			  AND status != 'cancelada'
			  AND start_time = $3)`
		args = append(args, cand.StartTime)
	}

	var exists bool
	err = s.pool.QueryRow(ctx, q, args...).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAppointment(row rowScanner) (schedule.Appointment, error) {
	var a schedule.Appointment
	var date time.Time
	err := row.Scan(
		&a.ID, &a.PatientID, &a.PatientName, &a.PatientPhone, &a.Type, &a.Provider,
		&date, &a.StartTime, &a.EndTime, &a.Duration, &a.Status, &a.Reason, &a.Notes,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Appointment{}, schedule.ErrNotFound
		}
		return schedule.Appointment{}, err
	}
	a.Date = schedule.FormatDate(date)
	return a, nil
}

func scanAppointments(rows pgx.Rows) ([]schedule.Appointment, error) {
	defer rows.Close()
	var out []schedule.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
