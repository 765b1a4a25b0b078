package schedules

// groupBy agrupa registros por la clave que devuelva keyFn,
// preservando el orden de entrada dentro de cada grupo.
func groupBy[K comparable](records []ScheduleRecord, keyFn func(ScheduleRecord) K) map[K][]ScheduleRecord {
	out := make(map[K][]ScheduleRecord)
	for _, r := range records {
		k := keyFn(r)
		out[k] = append(out[k], r)
	}
	return out
}
