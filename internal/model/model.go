package model

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Patient is a directory entry. The appointment form reads it to fill
// the denormalized patient fields on a booking; appointments never hold
// a live reference back.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// DemoPatients is the directory served in demo mode.
func DemoPatients() []Patient {
	return []Patient{
		{ID: "P-2024-001", Name: "Ana María Rodríguez", Phone: "+34 612 345 678", Email: "ana.rodriguez@email.com"},
		{ID: "P-2024-002", Name: "Miguel Santos García", Phone: "+34 623 456 789", Email: "miguel.santos@email.com"},
		{ID: "P-2024-003", Name: "Carmen López Martín", Phone: "+34 634 567 890", Email: "carmen.lopez@email.com"},
	}
}
