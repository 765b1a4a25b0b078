package schedules

import "time"

// ScheduleRecord es una dosis planificada: una tupla
// (usuario, medicamento, container, fecha, hora) persistida.
// El id lo asigna el store (uuid); el cliente nunca manda identidad.
type ScheduleRecord struct {
	ID string

	UserID       string
	MedicationID string
	Container    int // 1..3

	Date string // YYYY-MM-DD
	Time string // HH:MM

	Status    Status
	AlertSent bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// OccursAt combina date+time en un timestamp en la zona dada.
func (r ScheduleRecord) OccursAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, r.Date+" "+r.Time, loc)
}

// sortKey es el timestamp compuesto usado para ordenar registros.
// Con date y time zero-padded el orden lexicográfico coincide con el temporal.
func (r ScheduleRecord) sortKey() string {
	return r.Date + " " + r.Time
}
