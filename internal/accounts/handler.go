package accounts

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/meridianbank/meridian/internal/platform/httpx"
	"github.com/meridianbank/meridian/internal/shared"
)

// Handler exposes account endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers customer-facing account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listMine)
	r.Get("/{accountID}", h.get)
}

// MountAdminRoutes registers account lifecycle routes for admins.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/accounts/{accountID}/deactivate", h.setActive(false))
	r.Post("/accounts/{accountID}/activate", h.setActive(true))
}

type accountResponse struct {
	ID        int64  `json:"id"`
	Number    string `json:"accountNumber"`
	Agency    string `json:"agency"`
	Type      string `json:"accountType"`
	Balance   string `json:"balance"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

func toAccountResponse(a Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Number:    a.Number,
		Agency:    a.Agency,
		Type:      string(a.Type),
		Balance:   a.Balance.StringFixed(2),
		Active:    a.Active,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	list, err := h.service.ListMine(r.Context(), actor)
	if err != nil {
		h.logger.Error("list accounts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]accountResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAccountResponse(a))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid account id", shared.ErrValidation))
		return
	}
	account, err := h.service.Get(r.Context(), actor, accountID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAccountResponse(*account))
}

func (h *Handler) setActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := shared.IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, shared.ErrUnauthorized)
			return
		}
		accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
		if err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: invalid account id", shared.ErrValidation))
			return
		}
		account, err := h.service.SetActive(r.Context(), actor, accountID, active)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, toAccountResponse(*account))
	}
}
