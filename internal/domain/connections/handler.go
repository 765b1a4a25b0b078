package connections

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
	// Lado elder
	r.Post("/me/connections", inviteHandler(svc))
	r.Get("/me/connections", listMyConnectionsHandler(svc))

	// Lado caregiver
	r.Get("/me/elders", listMyEldersHandler(svc))

	r.Route("/connections/{connectionID}", func(cr chi.Router) {
		cr.Post("/accept", acceptHandler(svc))
		cr.Post("/revoke", revokeHandler(svc))
	})
}

type inviteRequest struct {
	CaregiverUserID string   `json:"caregiver_user_id"`
	Scopes          []string `json:"scopes"` // opcional; vacío => schedule:read
}

type connectionResponse struct {
	ID              string     `json:"id"`
	ElderUserID     string     `json:"elder_user_id"`
	CaregiverUserID string     `json:"caregiver_user_id"`
	Scopes          []Scope    `json:"scopes"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
}

// inviteHandler godoc
// @Summary Invitar a un caregiver
// @Description El elder autenticado invita a un caregiver a ver/gestionar su schedule. Scopes válidos: `schedule:read`, `schedule:write`.
// @Tags connections
// @Accept json
// @Produce json
// @Param payload body inviteRequest true "Caregiver y scopes"
// @Success 201 {object} connectionResponse
// @Failure 400 {string} string "invalid json / scope desconocido"
// @Failure 403 {string} string "only elders may invite caregivers"
// @Router /me/connections [post]
func inviteHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if claims.Role != auth.RoleElder {
			http.Error(w, "only elders may invite caregivers", http.StatusForbidden)
			return
		}

		var req inviteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		scopes := make([]Scope, 0, len(req.Scopes))
		for _, s := range req.Scopes {
			scopes = append(scopes, Scope(s))
		}

		c, err := svc.Invite(r.Context(), InviteInput{
			ElderUserID:     claims.UserID,
			CaregiverUserID: req.CaregiverUserID,
			Scopes:          scopes,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toConnectionResponse(c))
	}
}

func listMyConnectionsHandler(svc *Service) http.HandlerFunc {
	// Conexiones donde el caller es el elder.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByElder(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]connectionResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toConnectionResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func listMyEldersHandler(svc *Service) http.HandlerFunc {
	// Conexiones donde el caller es el caregiver.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByCaregiver(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]connectionResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toConnectionResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// acceptHandler godoc
// @Summary Aceptar invitación
// @Description El caregiver invitado acepta la conexión. Idempotente.
// @Tags connections
// @Produce json
// @Param connectionID path string true "ID de la conexión"
// @Success 200 {object} connectionResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "connection not found"
// @Failure 409 {string} string "invalid state"
// @Router /connections/{connectionID}/accept [post]
func acceptHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.Accept(r.Context(), chi.URLParam(r, "connectionID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConnectionResponse(c))
	}
}

func revokeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.Revoke(r.Context(), chi.URLParam(r, "connectionID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toConnectionResponse(c))
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	case ErrNotFound:
		http.Error(w, "connection not found", http.StatusNotFound)
	case ErrBadState:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toConnectionResponse(c Connection) connectionResponse {
	return connectionResponse{
		ID:              c.ID,
		ElderUserID:     c.ElderUserID,
		CaregiverUserID: c.CaregiverUserID,
		Scopes:          c.Scopes,
		Status:          c.Status,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
		RevokedAt:       c.RevokedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
