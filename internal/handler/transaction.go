package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alphabank/alphabank-api/internal/auth"
	"github.com/alphabank/alphabank-api/internal/handler/dto"
	"github.com/alphabank/alphabank-api/internal/model"
	"github.com/alphabank/alphabank-api/internal/service"
)

// TransactionService is the transaction logic used by TransactionHandler.
type TransactionService interface {
	Create(ctx context.Context, userID string, input service.CreateTransactionInput) (*model.Transaction, error)
	Get(ctx context.Context, userID, id string) (*model.Transaction, error)
	List(ctx context.Context, userID string, filter model.TransactionFilter) (*service.ListTransactionsOutput, error)
	Update(ctx context.Context, userID, id string, input service.UpdateTransactionInput) (*model.Transaction, error)
	Delete(ctx context.Context, userID, id string) error
	Summary(ctx context.Context, userID string, from, to *time.Time) (*model.TransactionSummary, error)
}

// TransactionHandler handles HTTP requests for transactions.
type TransactionHandler struct {
	svc    TransactionService
	logger *slog.Logger
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc TransactionService, logger *slog.Logger) *TransactionHandler {
	return &TransactionHandler{svc: svc, logger: logger}
}

// List handles GET /api/transactions.
//
// Query parameters: type, category_id, from and to (YYYY-MM-DD, both
// inclusive), cursor and limit.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, ok := parseLimit(w, query.Get("limit"))
	if !ok {
		return
	}
	from, to, ok := parseDateRange(w, query)
	if !ok {
		return
	}

	filter := model.TransactionFilter{
		From:   from,
		To:     to,
		Cursor: query.Get("cursor"),
		Limit:  limit,
	}
	if t := query.Get("type"); t != "" {
		kind := model.Kind(t)
		filter.Kind = &kind
	}
	if c := query.Get("category_id"); c != "" {
		filter.CategoryID = &c
	}

	result, err := h.svc.List(r.Context(), auth.MustUserIDFromContext(r.Context()), filter)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionListResponse{
		Data:       result.Transactions,
		Pagination: dto.Pagination{NextCursor: result.NextCursor, HasMore: result.HasMore},
	})
}

// Summary handles GET /api/transactions/summary.
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseDateRange(w, r.URL.Query())
	if !ok {
		return
	}

	summary, err := h.svc.Summary(r.Context(), auth.MustUserIDFromContext(r.Context()), from, to)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Create handles POST /api/transactions.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())
	tx, err := h.svc.Create(r.Context(), userID, service.CreateTransactionInput{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        req.TransactionType,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("transaction_created",
		slog.String("transaction_id", tx.ID),
		slog.String("user_id", userID),
	)
	writeJSON(w, http.StatusCreated, tx)
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	tx, err := h.svc.Get(r.Context(), auth.MustUserIDFromContext(r.Context()), id)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Update handles PUT /api/transactions/{id}.
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateTransactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.svc.Update(r.Context(), auth.MustUserIDFromContext(r.Context()), id, service.UpdateTransactionInput{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        req.TransactionType,
		CategoryID:  req.CategoryID,
		Date:        req.Date,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Delete handles DELETE /api/transactions/{id}.
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), auth.MustUserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Transaction deleted successfully"})
}

// parseDateRange reads ?from= and ?to= as calendar days. The returned upper
// bound is exclusive: midnight after the to day.
func parseDateRange(w http.ResponseWriter, query url.Values) (from, to *time.Time, ok bool) {
	if raw := query.Get("from"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DATE", "from must be YYYY-MM-DD")
			return nil, nil, false
		}
		from = &d.Time
	}
	if raw := query.Get("to"); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_DATE", "to must be YYYY-MM-DD")
			return nil, nil, false
		}
		end := d.Time.AddDate(0, 0, 1)
		to = &end
	}
	return from, to, true
}
