package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridianbank/meridian/internal/platform/httpx"
	"github.com/meridianbank/meridian/internal/shared"
)

// Handler exposes the admin audit log listing.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountAdminRoutes registers audit routes on the admin subtree.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/audit-logs", h.list)
}

type logResponse struct {
	ID          int64          `json:"id"`
	Entity      string         `json:"entity"`
	EntityID    int64          `json:"entityId"`
	Action      string         `json:"action"`
	ActorID     int64          `json:"actorId"`
	ActorEmail  string         `json:"actorEmail"`
	Snapshot    map[string]any `json:"snapshot,omitempty"`
	Description string         `json:"description,omitempty"`
	OccurredAt  string         `json:"occurredAt"`
}

type listResponse struct {
	Logs       []logResponse `json:"logs"`
	Page       int           `json:"page"`
	PerPage    int           `json:"perPage"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := Filter{Entity: r.URL.Query().Get("entity")}
	if raw := r.URL.Query().Get("entity_id"); raw != "" {
		filter.EntityID, _ = strconv.ParseInt(raw, 10, 64)
	}
	logs, pagination, err := h.service.List(r.Context(), filter, shared.ParsePageRequest(r))
	if err != nil {
		h.logger.Error("list audit logs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := listResponse{
		Logs:       make([]logResponse, 0, len(logs)),
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		Total:      pagination.Total,
		TotalPages: pagination.TotalPages,
	}
	for _, l := range logs {
		out.Logs = append(out.Logs, logResponse{
			ID:          l.ID,
			Entity:      l.Entity,
			EntityID:    l.EntityID,
			Action:      l.Action,
			ActorID:     l.ActorID,
			ActorEmail:  l.ActorEmail,
			Snapshot:    l.Snapshot,
			Description: l.Description,
			OccurredAt:  l.OccurredAt.UTC().Format(time.RFC3339),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}
