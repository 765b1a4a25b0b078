package medications

import "time"

// Form define las presentaciones soportadas del medicamento.
// @Enum tablet, capsule, liquid, injection, other
type Form string

const (
	FormTablet    Form = "tablet"
	FormCapsule   Form = "capsule"
	FormLiquid    Form = "liquid"
	FormInjection Form = "injection"
	FormOther     Form = "other"
)

// Medication es una entrada del catálogo de referencia.
// Para el resto del sistema es data inmutable: los schedules
// solo la referencian por id y resuelven el nombre para mostrar.
type Medication struct {
	ID string

	Name        string // único en el catálogo
	Dosage      string // "500 mg", "5 ml", etc.
	Form        Form
	Description string

	CreatedAt time.Time
	UpdatedAt time.Time
}
