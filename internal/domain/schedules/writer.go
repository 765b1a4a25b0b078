package schedules

import (
	"time"

	"github.com/google/uuid"
)

// AlarmSlot es una alarma deseada tal como viaja por el wire:
// fecha y hora como strings separados.
type AlarmSlot struct {
	Date string // YYYY-MM-DD
	Time string // HH:MM
}

// Assignment es el estado deseado de un container: un medicamento
// (por nombre de catálogo) y sus alarmas.
type Assignment struct {
	Pill   string
	Alarms []AlarmSlot
}

// DesiredState mapea container (1..3) -> asignación deseada.
// Containers ausentes no se tocan.
type DesiredState map[int]Assignment

// WritePlan es el diff entre el estado deseado y los registros existentes.
type WritePlan struct {
	Creates []ScheduleRecord
	Updates []ScheduleRecord

	// Containers cuyo pill no resolvió en el catálogo. Se saltean sin
	// registro alguno; el handler los reporta en la respuesta.
	SkippedContainers []int
}

// slotKey identifica un registro por su slot exacto.
// Matchear por este slot (y no solo por container+user+medication) evita
// que varias alarmas nuevas del mismo medicamento colapsen sobre un único
// registro existente pisándose entre sí.
type slotKey struct {
	Container    int
	UserID       string
	MedicationID string
	Date         string
	Time         string
}

// PlanWrites decide create-vs-update por registro candidato.
//   - Containers sin pill o sin alarmas no producen nada.
//   - Pill sin resolver por nombre exacto => container salteado en silencio
//     (queda anotado en SkippedContainers).
//   - Candidato con slot exacto ya existente => update reusando identidad,
//     con status/alertSent reseteados.
//   - Resto => create con uuid nuevo.
func PlanWrites(desired DesiredState, existing []ScheduleRecord, idsByName map[string]string, userID string, now time.Time) WritePlan {
	bySlot := make(map[slotKey]ScheduleRecord, len(existing))
	for _, r := range existing {
		if r.UserID != userID {
			continue
		}
		bySlot[slotKey{
			Container:    r.Container,
			UserID:       r.UserID,
			MedicationID: r.MedicationID,
			Date:         r.Date,
			Time:         r.Time,
		}] = r
	}

	plan := WritePlan{
		Creates:           []ScheduleRecord{},
		Updates:           []ScheduleRecord{},
		SkippedContainers: []int{},
	}

	for c := ContainerMin; c <= ContainerMax; c++ {
		a, ok := desired[c]
		if !ok || a.Pill == "" || len(a.Alarms) == 0 {
			continue
		}

		medID, ok := idsByName[a.Pill]
		if !ok {
			plan.SkippedContainers = append(plan.SkippedContainers, c)
			continue
		}

		for _, alarm := range a.Alarms {
			key := slotKey{
				Container:    c,
				UserID:       userID,
				MedicationID: medID,
				Date:         alarm.Date,
				Time:         alarm.Time,
			}

			if prev, found := bySlot[key]; found {
				prev.Status = StatusPending
				prev.AlertSent = false
				prev.UpdatedAt = now
				plan.Updates = append(plan.Updates, prev)
				continue
			}

			plan.Creates = append(plan.Creates, ScheduleRecord{
				ID:           uuid.NewString(),
				UserID:       userID,
				MedicationID: medID,
				Container:    c,
				Date:         alarm.Date,
				Time:         alarm.Time,
				Status:       StatusPending,
				AlertSent:    false,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
		}
	}

	return plan
}
