package medications

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pillminder/internal/middleware"
	"pillminder/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Get("/", listMedicationsHandler(svc))
		mr.Get("/{medicationID}", getMedicationHandler(svc))

		// Alta de catálogo: solo admin
		mr.Post("/", createMedicationHandler(svc))
	})
}

type createMedicationRequest struct {
	Name        string `json:"name"`
	Dosage      string `json:"dosage"`
	Form        string `json:"form" enums:"tablet,capsule,liquid,injection,other"`
	Description string `json:"description"`
}

type medicationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Dosage      string    `json:"dosage"`
	Form        Form      `json:"form"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// listMedicationsHandler godoc
// @Summary Listar catálogo de medicamentos
// @Tags medications
// @Produce json
// @Success 200 {array} medicationResponse
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Obtener un medicamento
// @Tags medications
// @Produce json
// @Param medicationID path string true "ID del medicamento"
// @Success 200 {object} medicationResponse
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "medicationID"))
		if err != nil {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// createMedicationHandler godoc
// @Summary Crear medicamento (solo admin)
// @Tags medications
// @Accept json
// @Produce json
// @Param payload body createMedicationRequest true "Datos del medicamento"
// @Success 201 {object} medicationResponse
// @Failure 403 {string} string "forbidden"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != auth.RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createMedicationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), CreateInput{
			Name:        req.Name,
			Dosage:      req.Dosage,
			Form:        req.Form,
			Description: req.Description,
		})
		if err != nil {
			switch err {
			case ErrDuplicate:
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	return medicationResponse{
		ID:          m.ID,
		Name:        m.Name,
		Dosage:      m.Dosage,
		Form:        m.Form,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
