package ledger

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/meridianbank/meridian/internal/platform/httpx"
	"github.com/meridianbank/meridian/internal/shared"
)

var validate = validator.New()

// Handler exposes the ledger over HTTP. Every route requires an
// authenticated identity in the request context.
type Handler struct {
	logger *slog.Logger
	engine *Engine
	query  *Query
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, engine *Engine, query *Query) *Handler {
	return &Handler{logger: logger, engine: engine, query: query}
}

// MountAdminRoutes registers the cross-account listing on the admin subtree.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/transactions", h.listAll)
}

// MountRoutes registers transaction routes under an account subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/deposit", h.deposit)
	r.Post("/withdraw", h.withdraw)
	r.Post("/transfer", h.transfer)
	r.Get("/", h.extract)
	r.Get("/filter", h.extractByType)
	r.Get("/date-range", h.extractByDateRange)
	r.Get("/{transactionID}/receipt", h.receipt)
}

type movementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"omitempty,max=500"`
}

type transferRequest struct {
	TargetAccountNumber string          `json:"targetAccountNumber" validate:"required"`
	Amount              decimal.Decimal `json:"amount"`
	Description         string          `json:"description" validate:"omitempty,max=500"`
}

type transactionResponse struct {
	ID                  int64   `json:"id"`
	Type                string  `json:"transactionType"`
	Amount              string  `json:"amount"`
	Description         string  `json:"description,omitempty"`
	TransactionDate     string  `json:"transactionDate"`
	AccountNumber       string  `json:"accountNumber"`
	TargetAccountNumber *string `json:"targetAccountNumber,omitempty"`
	Reversed            bool    `json:"reversed"`
}

type extractResponse struct {
	Transactions []transactionResponse `json:"transactions"`
	Page         int                   `json:"page"`
	PerPage      int                   `json:"perPage"`
	Total        int                   `json:"total"`
	TotalPages   int                   `json:"totalPages"`
}

func toTransactionResponse(t Transaction) transactionResponse {
	return transactionResponse{
		ID:                  t.ID,
		Type:                string(t.Type),
		Amount:              t.Amount.StringFixed(2),
		Description:         t.Description,
		TransactionDate:     t.TransactionDate.UTC().Format(time.RFC3339),
		AccountNumber:       t.AccountNumber,
		TargetAccountNumber: t.TargetNumber,
		Reversed:            t.Reversed,
	}
}

func toExtractResponse(txns []Transaction, p shared.Pagination) extractResponse {
	out := extractResponse{
		Transactions: make([]transactionResponse, 0, len(txns)),
		Page:         p.Page,
		PerPage:      p.PerPage,
		Total:        p.Total,
		TotalPages:   p.TotalPages,
	}
	for _, t := range txns {
		out.Transactions = append(out.Transactions, toTransactionResponse(t))
	}
	return out
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	actor, accountID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req movementRequest
	if !h.decode(w, r, &req) {
		return
	}
	txn, err := h.engine.Deposit(r.Context(), actor, MovementInput{
		AccountID:   accountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTransactionResponse(*txn))
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	actor, accountID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req movementRequest
	if !h.decode(w, r, &req) {
		return
	}
	txn, err := h.engine.Withdraw(r.Context(), actor, MovementInput{
		AccountID:   accountID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTransactionResponse(*txn))
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	actor, accountID, ok := h.scope(w, r)
	if !ok {
		return
	}
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	txn, err := h.engine.Transfer(r.Context(), actor, TransferInput{
		SourceAccountID: accountID,
		TargetNumber:    req.TargetAccountNumber,
		Amount:          req.Amount,
		Description:     req.Description,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTransactionResponse(*txn))
}

func (h *Handler) extract(w http.ResponseWriter, r *http.Request) {
	h.serveExtract(w, r, ExtractFilter{})
}

func (h *Handler) extractByType(w http.ResponseWriter, r *http.Request) {
	txnType := TransactionType(r.URL.Query().Get("type"))
	if !txnType.Valid() {
		httpx.RespondError(w, fmt.Errorf("%w: unknown transaction type %q", shared.ErrValidation, string(txnType)))
		return
	}
	h.serveExtract(w, r, ExtractFilter{Type: &txnType})
}

func (h *Handler) extractByDateRange(w http.ResponseWriter, r *http.Request) {
	from, err := parseDate(r.URL.Query().Get("start"), false)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := parseDate(r.URL.Query().Get("end"), true)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.serveExtract(w, r, ExtractFilter{From: from, To: to})
}

func (h *Handler) serveExtract(w http.ResponseWriter, r *http.Request, filter ExtractFilter) {
	actor, accountID, ok := h.scope(w, r)
	if !ok {
		return
	}
	txns, pagination, err := h.query.Extract(r.Context(), actor, accountID, filter, shared.ParsePageRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toExtractResponse(txns, pagination))
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	txns, pagination, err := h.query.ListAll(r.Context(), shared.ParsePageRequest(r))
	if err != nil {
		h.logger.Error("list all transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toExtractResponse(txns, pagination))
}

func (h *Handler) receipt(w http.ResponseWriter, r *http.Request) {
	actor, _, ok := h.scope(w, r)
	if !ok {
		return
	}
	transactionID, err := strconv.ParseInt(chi.URLParam(r, "transactionID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid transaction id", shared.ErrValidation))
		return
	}
	txn, err := h.query.Receipt(r.Context(), actor, transactionID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTransactionResponse(*txn))
}

// scope resolves the acting user and the account id from the route.
func (h *Handler) scope(w http.ResponseWriter, r *http.Request) (shared.Identity, int64, bool) {
	actor, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return shared.Identity{}, 0, false
	}
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid account id", shared.ErrValidation))
		return shared.Identity{}, 0, false
	}
	return actor, accountID, true
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

// parseDate accepts date-only or RFC3339 timestamps. Date-only end bounds
// extend to the last instant of that day so the range stays inclusive.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", shared.ErrValidation, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
