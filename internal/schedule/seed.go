package schedule

import "time"

// SeedDemo fills b with a small agenda around today so the calendar has
// something to show when the server runs without a database.
func SeedDemo(b *Book) error {
	today := time.Now()
	day := func(offset int) string { return FormatDate(today.AddDate(0, 0, offset)) }

	fixtures := []Appointment{
		{
			PatientID:    "P-2024-001",
			PatientName:  "Ana María Rodríguez",
			PatientPhone: "+34 612 345 678",
			Type:         TypeConsulta,
			Provider:     "dr-garcia",
			Date:         day(0),
			StartTime:    "09:00",
			Duration:     30,
			Status:       StatusConfirmada,
			Reason:       "Revisión mensual",
			Notes:        "Paciente con historial de hipertensión",
		},
		{
			PatientID:    "P-2024-002",
			PatientName:  "Miguel Santos García",
			PatientPhone: "+34 623 456 789",
			Type:         TypeRevision,
			Provider:     "dr-rodriguez",
			Date:         day(0),
			StartTime:    "10:30",
			Duration:     30,
			Status:       StatusPendiente,
			Reason:       "Seguimiento post-cirugía",
			Notes:        "Control de herida quirúrgica",
		},
		{
			PatientID:    "P-2024-003",
			PatientName:  "Carmen López Martín",
			PatientPhone: "+34 634 567 890",
			Type:         TypeUrgencia,
			Provider:     "dr-garcia",
			Date:         day(1),
			StartTime:    "14:00",
			Duration:     15,
			Status:       StatusCancelada,
			Reason:       "Dolor abdominal agudo",
			Notes:        "Paciente canceló por mejoría",
		},
	}

	for _, f := range fixtures {
		if _, err := b.Create(f); err != nil {
			return err
		}
	}
	return nil
}
