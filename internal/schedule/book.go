package schedule

import (
	"sync"
	"time"
)

// Book is the in-memory appointment collection. It backs demo mode and
// the handler tests; the Postgres store implements the same contract for
// persistent deployments.
//
// Conflict checking is the caller's responsibility before booking, but
// Create, Update and Move re-check under the write lock as a backstop,
// the same way the database's partial unique index catches races in the
// persistent store.
type Book struct {
	mu     sync.RWMutex
	policy ConflictPolicy
	appts  []Appointment
}

func NewBook(policy ConflictPolicy) *Book {
	return &Book{policy: policy}
}

// Create validates a, assigns it an id, defaults the status to pendiente,
// derives EndTime and appends it to the book.
func (b *Book) Create(a Appointment) (Appointment, error) {
	a, err := NewAppointment(a)
	if err != nil {
		return Appointment{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	taken, err := Conflicts(b.appts, Candidate{Date: a.Date, StartTime: a.StartTime, Duration: a.Duration}, b.policy)
	if err != nil {
		return Appointment{}, err
	}
	if taken {
		return Appointment{}, ErrSlotTaken
	}

	b.appts = append(b.appts, a)
	return a, nil
}

func (b *Book) Get(id string) (Appointment, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.find(id)
	if i < 0 {
		return Appointment{}, ErrNotFound
	}
	return b.appts[i], nil
}

// Patch carries the fields an edit may change; nil fields are left
// untouched. The id, creation time and derived EndTime are never
// patchable directly.
type Patch struct {
	PatientID    *string
	PatientName  *string
	PatientPhone *string
	Type         *AppointmentType
	Provider     *string
	Date         *string
	StartTime    *string
	Duration     *int
	Status       *Status
	Reason       *string
	Notes        *string
}

// Apply merges p into a, revalidates and recomputes EndTime from the
// resulting start and duration.
func (p Patch) Apply(a *Appointment) error {
	if p.PatientID != nil {
		a.PatientID = *p.PatientID
	}
	if p.PatientName != nil {
		a.PatientName = *p.PatientName
	}
	if p.PatientPhone != nil {
		a.PatientPhone = *p.PatientPhone
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Provider != nil {
		a.Provider = *p.Provider
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.StartTime != nil {
		a.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		a.Duration = *p.Duration
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Reason != nil {
		a.Reason = *p.Reason
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}

	if err := a.Validate(); err != nil {
		return err
	}
	end, err := EndOf(a.StartTime, a.Duration)
	if err != nil {
		return err
	}
	a.EndTime = end
	a.UpdatedAt = time.Now()
	return nil
}

// Update merges p into the appointment with the given id. Unknown ids
// are an error, not a silent no-op. A patch that leaves the record live
// must leave it on a free slot: un-cancelling an appointment whose slot
// was re-booked, or patching its date/start onto an occupied one, fails
// with ErrSlotTaken.
func (b *Book) Update(id string, p Patch) (Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.find(id)
	if i < 0 {
		return Appointment{}, ErrNotFound
	}

	a := b.appts[i]
	if err := p.Apply(&a); err != nil {
		return Appointment{}, err
	}

	if a.Status != StatusCancelada {
		cand := Candidate{ID: a.ID, Date: a.Date, StartTime: a.StartTime, Duration: a.Duration}
		taken, err := Conflicts(b.appts, cand, b.policy)
		if err != nil {
			return Appointment{}, err
		}
		if taken {
			return Appointment{}, ErrSlotTaken
		}
	}

	b.appts[i] = a
	return a, nil
}

// Remove deletes the appointment outright. There is no soft delete;
// cancelling is a status change, not a removal.
func (b *Book) Remove(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.find(id)
	if i < 0 {
		return ErrNotFound
	}
	b.appts = append(b.appts[:i], b.appts[i+1:]...)
	return nil
}

// Move reschedules the appointment to (newDate, newStart), keeping its
// duration and shifting EndTime with it.
func (b *Book) Move(id, newDate, newStart string) (Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.find(id)
	if i < 0 {
		return Appointment{}, ErrNotFound
	}
	a := b.appts[i]

	cand := Candidate{ID: id, Date: newDate, StartTime: newStart, Duration: a.Duration}
	taken, err := Conflicts(b.appts, cand, b.policy)
	if err != nil {
		return Appointment{}, err
	}
	if taken {
		return Appointment{}, ErrSlotTaken
	}

	end, err := EndOf(newStart, a.Duration)
	if err != nil {
		return Appointment{}, err
	}
	a.Date = newDate
	a.StartTime = newStart
	a.EndTime = end
	a.UpdatedAt = time.Now()

	b.appts[i] = a
	return a, nil
}

// ListByDate returns the appointments on date in insertion order.
func (b *Book) ListByDate(date string) []Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Appointment
	for _, a := range b.appts {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

// ListRange returns the appointments with from <= date <= to, in
// insertion order. ISO dates compare correctly as strings.
func (b *Book) ListRange(from, to string) []Appointment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Appointment
	for _, a := range b.appts {
		if a.Date >= from && a.Date <= to {
			out = append(out, a)
		}
	}
	return out
}

// SlotTaken runs the conflict check against the book's current contents.
func (b *Book) SlotTaken(cand Candidate) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Conflicts(b.appts, cand, b.policy)
}

// find returns the index of id, or -1. Callers hold b.mu.
func (b *Book) find(id string) int {
	for i := range b.appts {
		if b.appts[i].ID == id {
			return i
		}
	}
	return -1
}
