package users

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridianbank/meridian/internal/platform/httpx"
	"github.com/meridianbank/meridian/internal/shared"
)

// Handler exposes admin user listings.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountAdminRoutes registers user routes on the admin subtree.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/users", h.list)
}

type userResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

type listResponse struct {
	Users      []userResponse `json:"users"`
	Page       int            `json:"page"`
	PerPage    int            `json:"perPage"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, pagination, err := h.service.List(r.Context(), shared.ParsePageRequest(r))
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := listResponse{
		Users:      make([]userResponse, 0, len(list)),
		Page:       pagination.Page,
		PerPage:    pagination.PerPage,
		Total:      pagination.Total,
		TotalPages: pagination.TotalPages,
	}
	for _, u := range list {
		out.Users = append(out.Users, userResponse{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			Active:    u.Active,
			CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}
