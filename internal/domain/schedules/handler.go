package schedules

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"pillminder/internal/domain/connections"
	"pillminder/internal/middleware"
	"pillminder/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, connsSvc *connections.Service) {
	r.Route("/me/schedule", func(sr chi.Router) {
		sr.Get("/", getMyScheduleHandler(svc))
		sr.Put("/", applyMyScheduleHandler(svc))
		sr.Get("/records", listMyRecordsHandler(svc))
		sr.Delete("/records/{recordID}", cancelRecordHandler(svc))
	})

	// Vista caregiver/admin sobre el schedule de un elder conectado
	r.Route("/elders/{elderID}/schedule", func(er chi.Router) {
		er.Get("/", getElderScheduleHandler(svc, connsSvc))
		er.Put("/", applyElderScheduleHandler(svc, connsSvc))
	})
}

// containerViewResponse es la vista derivada de un container.
type containerViewResponse struct {
	Pill   *string     `json:"pill"`
	Alarms []time.Time `json:"alarms"`
}

type alarmSlotRequest struct {
	Date string `json:"date"` // YYYY-MM-DD
	Time string `json:"time"` // HH:MM
}

type assignmentRequest struct {
	Pill   string             `json:"pill"`
	Alarms []alarmSlotRequest `json:"alarms"`
}

// applyScheduleRequest es el estado deseado por container.
// Keys del mapa: "1", "2", "3". Containers ausentes no se tocan.
type applyScheduleRequest struct {
	Containers map[string]assignmentRequest `json:"containers"`
}

type applyScheduleResponse struct {
	Created           int   `json:"created"`
	Updated           int   `json:"updated"`
	SkippedContainers []int `json:"skipped_containers"`
}

type recordResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	MedicationID string    `json:"medication_id"`
	Container    int       `json:"container"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       Status    `json:"status"`
	AlertSent    bool      `json:"alert_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// getMyScheduleHandler godoc
// @Summary Vista reconciliada del schedule propio
// @Description Devuelve el mapa de tres containers {pill, alarms} del usuario autenticado, recalculado desde el store.
// @Tags schedules
// @Produce json
// @Success 200 {object} map[string]containerViewResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me/schedule [get]
func getMyScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		views, err := svc.ContainerViews(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toViewsResponse(views))
	}
}

// applyMyScheduleHandler godoc
// @Summary Aplicar estado deseado del schedule propio
// @Description Persiste pill+alarmas por container como upserts. Solo para rol elder. Containers cuyo pill no resuelve en el catálogo se saltean y se reportan en skipped_containers.
// @Tags schedules
// @Accept json
// @Produce json
// @Param payload body applyScheduleRequest true "Estado deseado"
// @Success 200 {object} applyScheduleResponse
// @Failure 400 {string} string "invalid json / container o fecha inválidos"
// @Failure 403 {string} string "only elders may update their schedule"
// @Router /me/schedule [put]
func applyMyScheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != auth.RoleElder {
			http.Error(w, "only elders may update their schedule", http.StatusForbidden)
			return
		}

		applySchedule(w, r, svc, claims.UserID)
	}
}

func listMyRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		records, err := svc.ListRecords(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(records))
		for _, rec := range records {
			out = append(out, toRecordResponse(rec))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// cancelRecordHandler godoc
// @Summary Cancelar una dosis planificada
// @Description Soft delete: el registro pasa a status Cancelled y deja de participar en la vista y en las alertas. Idempotente.
// @Tags schedules
// @Produce json
// @Param recordID path string true "ID del registro"
// @Success 200 {object} recordResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "record not found"
// @Router /me/schedule/records/{recordID} [delete]
func cancelRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rec, err := svc.Cancel(r.Context(), claims.UserID, chi.URLParam(r, "recordID"))
		if err != nil {
			switch {
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "record not found", http.StatusNotFound)
			}
			return
		}
		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// getElderScheduleHandler aplica permisos:
// - el propio elder: permitido
// - admin: lectura permitida
// - caregiver: requiere conexión activa con scope schedule:read
func getElderScheduleHandler(svc *Service, connsSvc *connections.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		elderID := chi.URLParam(r, "elderID")
		if claims.UserID != elderID && claims.Role != auth.RoleAdmin {
			c, err := connsSvc.GetActive(r.Context(), elderID, claims.UserID)
			if err != nil || !connections.HasScope(c, connections.ScopeScheduleRead) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		views, err := svc.ContainerViews(r.Context(), elderID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toViewsResponse(views))
	}
}

// applyElderScheduleHandler: el propio elder (rol 2) o un caregiver con
// conexión activa y scope schedule:write.
func applyElderScheduleHandler(svc *Service, connsSvc *connections.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		elderID := chi.URLParam(r, "elderID")
		if claims.UserID == elderID {
			if claims.Role != auth.RoleElder {
				http.Error(w, "only elders may update their schedule", http.StatusForbidden)
				return
			}
		} else {
			c, err := connsSvc.GetActive(r.Context(), elderID, claims.UserID)
			if err != nil || !connections.HasScope(c, connections.ScopeScheduleWrite) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		applySchedule(w, r, svc, elderID)
	}
}

// applySchedule decodifica el estado deseado y lo aplica para targetUserID.
func applySchedule(w http.ResponseWriter, r *http.Request, svc *Service, targetUserID string) {
	var req applyScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	desired := make(DesiredState, len(req.Containers))
	for key, a := range req.Containers {
		c, err := strconv.Atoi(key)
		if err != nil || !ValidContainer(c) {
			http.Error(w, "container must be 1, 2 or 3", http.StatusBadRequest)
			return
		}
		alarms := make([]AlarmSlot, 0, len(a.Alarms))
		for _, al := range a.Alarms {
			alarms = append(alarms, AlarmSlot{Date: al.Date, Time: al.Time})
		}
		desired[c] = Assignment{
			Pill:   strings.TrimSpace(a.Pill),
			Alarms: alarms,
		}
	}

	res, err := svc.Apply(r.Context(), targetUserID, desired)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, "date must be YYYY-MM-DD and time HH:MM", http.StatusBadRequest)
			return
		}
		// El primer error del batch es el error de la operación.
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, applyScheduleResponse{
		Created:           res.Created,
		Updated:           res.Updated,
		SkippedContainers: res.SkippedContainers,
	})
}

func toViewsResponse(views map[int]ContainerView) map[string]containerViewResponse {
	out := make(map[string]containerViewResponse, len(views))
	for c, v := range views {
		out[strconv.Itoa(c)] = containerViewResponse{
			Pill:   v.Pill,
			Alarms: v.Alarms,
		}
	}
	return out
}

func toRecordResponse(r ScheduleRecord) recordResponse {
	return recordResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		MedicationID: r.MedicationID,
		Container:    r.Container,
		Date:         r.Date,
		Time:         r.Time,
		Status:       r.Status,
		AlertSent:    r.AlertSent,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
