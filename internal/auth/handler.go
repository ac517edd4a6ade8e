package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridianbank/meridian/internal/accounts"
	"github.com/meridianbank/meridian/internal/platform/httpx"
	"github.com/meridianbank/meridian/internal/shared"
)

var validate = validator.New()

// Handler exposes registration and login.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

type registerRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Email       string `json:"email" validate:"required,email"`
	CPF         string `json:"cpf" validate:"required,len=11"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	AccountType string `json:"accountType" validate:"omitempty,oneof=CHECKING SAVINGS"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token         string `json:"token"`
	Type          string `json:"type"`
	UserID        int64  `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	reg, err := h.service.Register(r.Context(), RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		CPF:         req.CPF,
		Password:    req.Password,
		AccountType: accounts.AccountType(req.AccountType),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, authResponse{
		Token:         reg.Token,
		Type:          "Bearer",
		UserID:        reg.User.ID,
		Name:          reg.User.Name,
		Email:         reg.User.Email,
		Role:          reg.User.Role,
		AccountNumber: reg.Account.Number,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, authResponse{
		Token:  session.Token,
		Type:   "Bearer",
		UserID: session.User.ID,
		Name:   session.User.Name,
		Email:  session.User.Email,
		Role:   session.User.Role,
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed request body", shared.ErrValidation))
		return false
	}
	if err := validate.Struct(target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", shared.ErrValidation, err))
		return false
	}
	return true
}
