package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"clinica-agenda-api/internal/model"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrPatientExists   = errors.New("patient id already in use")
)

func (s *Store) SearchPatients(ctx context.Context, q string) ([]model.Patient, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, phone, email, created_at, updated_at
		 FROM patients
		 WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR id ILIKE '%' || $1 || '%'
		 ORDER BY name`, strings.TrimSpace(q))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Patient
	for rows.Next() {
		var p model.Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetPatient(ctx context.Context, id string) (model.Patient, error) {
	var p model.Patient
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, phone, email, created_at, updated_at
		 FROM patients WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Patient{}, ErrPatientNotFound
		}
		return model.Patient{}, err
	}
	return p, nil
}

func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO patients (id, name, phone, email) VALUES ($1,$2,$3,$4)`,
		p.ID, p.Name, p.Phone, p.Email,
	)
	if isUniqueViolation(err) {
		return ErrPatientExists
	}
	return err
}

func (s *Store) UpdatePatient(ctx context.Context, p *model.Patient) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE patients SET name=$1, phone=$2, email=$3, updated_at=NOW() WHERE id=$4`,
		p.Name, p.Phone, p.Email, p.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}
