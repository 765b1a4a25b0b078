package schedules

import (
	"sort"
	"time"
)

// ContainerView es el resumen derivado de un container para mostrar:
// el medicamento vigente y sus alarmas. No se persiste; se recalcula
// en cada lectura.
type ContainerView struct {
	Pill   *string
	Alarms []time.Time
}

// Reconcile transforma la lista plana de registros de un usuario en el
// mapa de tres containers. Reglas:
//   - los registros Cancelled no participan;
//   - por container manda el set de registros de la fecha más reciente;
//   - pill se resuelve por id en idToName, con fallback al id crudo;
//   - containers sin registros quedan {nil, []}.
//
// Pura dada su entrada; nunca falla. Un container fuera de rango en data
// legada se coerciona al 1 (las escrituras nuevas lo rechazan antes).
func Reconcile(records []ScheduleRecord, idToName map[string]string, loc *time.Location) map[int]ContainerView {
	if loc == nil {
		loc = time.Local
	}

	active := make([]ScheduleRecord, 0, len(records))
	for _, r := range records {
		if r.Status == StatusCancelled {
			continue
		}
		active = append(active, r)
	}

	groups := groupBy(active, func(r ScheduleRecord) int {
		if !ValidContainer(r.Container) {
			return ContainerMin
		}
		return r.Container
	})

	out := make(map[int]ContainerView, ContainerMax)
	for c := ContainerMin; c <= ContainerMax; c++ {
		group := groups[c]
		if len(group) == 0 {
			out[c] = ContainerView{Pill: nil, Alarms: []time.Time{}}
			continue
		}

		// Más reciente primero por date+time compuesto.
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].sortKey() > group[j].sortKey()
		})

		// La fecha más reciente define la asignación vigente;
		// entran todos los registros que comparten esa fecha exacta.
		latestDate := group[0].Date
		latestSet := make([]ScheduleRecord, 0, len(group))
		for _, r := range group {
			if r.Date == latestDate {
				latestSet = append(latestSet, r)
			}
		}

		name, ok := idToName[latestSet[0].MedicationID]
		if !ok {
			// Id sin resolver: mostramos el id crudo antes que romper la vista.
			name = latestSet[0].MedicationID
		}

		alarms := make([]time.Time, 0, len(latestSet))
		for _, r := range latestSet {
			t, err := r.OccursAt(loc)
			if err != nil {
				continue
			}
			alarms = append(alarms, t)
		}

		out[c] = ContainerView{Pill: &name, Alarms: alarms}
	}

	return out
}
