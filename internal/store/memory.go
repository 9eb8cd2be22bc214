package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"clinica-agenda-api/internal/model"
	"clinica-agenda-api/internal/schedule"
)

// Memory serves demo mode: the seeded schedule.Book plus an in-memory
// patient directory, behind the same method set as the Postgres store.
// The handler tests run against it too.
type Memory struct {
	book *schedule.Book

	mu       sync.RWMutex
	patients map[string]model.Patient
}

func NewMemory(book *schedule.Book, patients []model.Patient) *Memory {
	m := &Memory{book: book, patients: make(map[string]model.Patient, len(patients))}
	for _, p := range patients {
		m.patients[p.ID] = p
	}
	return m
}

func (m *Memory) Create(_ context.Context, a schedule.Appointment) (schedule.Appointment, error) {
	return m.book.Create(a)
}

func (m *Memory) Get(_ context.Context, id string) (schedule.Appointment, error) {
	return m.book.Get(id)
}

func (m *Memory) Update(_ context.Context, id string, p schedule.Patch) (schedule.Appointment, error) {
	return m.book.Update(id, p)
}

func (m *Memory) Delete(_ context.Context, id string) error {
	return m.book.Remove(id)
}

func (m *Memory) Move(_ context.Context, id, newDate, newStart string) (schedule.Appointment, error) {
	return m.book.Move(id, newDate, newStart)
}

func (m *Memory) ListByDate(_ context.Context, date string) ([]schedule.Appointment, error) {
	return m.book.ListByDate(date), nil
}

func (m *Memory) ListRange(_ context.Context, from, to string) ([]schedule.Appointment, error) {
	return m.book.ListRange(from, to), nil
}

func (m *Memory) SlotTaken(_ context.Context, cand schedule.Candidate) (bool, error) {
	return m.book.SlotTaken(cand)
}

func (m *Memory) SearchPatients(_ context.Context, q string) ([]model.Patient, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Patient
	for _, p := range m.patients {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.ID), q) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetPatient(_ context.Context, id string) (model.Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.patients[id]
	if !ok {
		return model.Patient{}, ErrPatientNotFound
	}
	return p, nil
}

func (m *Memory) CreatePatient(_ context.Context, p *model.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.patients[p.ID]; ok {
		return ErrPatientExists
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.patients[p.ID] = *p
	return nil
}

func (m *Memory) UpdatePatient(_ context.Context, p *model.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.patients[p.ID]
	if !ok {
		return ErrPatientNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = *p
	return nil
}
