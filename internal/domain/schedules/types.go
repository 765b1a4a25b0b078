package schedules

// Status define el ciclo de vida de una dosis planificada.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusTaken     Status = "Taken"
	StatusMissed    Status = "Missed"
	StatusCancelled Status = "Cancelled"
)

// Containers son los tres slots físicos del pastillero.
const (
	ContainerMin = 1
	ContainerMax = 3
)

// ValidContainer valida que el slot exista en el pastillero.
func ValidContainer(c int) bool {
	return c >= ContainerMin && c <= ContainerMax
}

const (
	// Formatos de wire para fecha y hora (van como strings separados).
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)
