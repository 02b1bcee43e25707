package stock

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mandibooks/mandibooks/internal/platform/httpx"
)

// Handler exposes the movement log and manual adjustments.
type Handler struct {
	logger   *slog.Logger
	engine   *Engine
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, engine *Engine) *Handler {
	return &Handler{logger: logger, engine: engine, validate: validator.New()}
}

// MountRoutes registers stock routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/transactions", h.listTransactions)
	r.Post("/adjustments", h.postAdjustment)
	r.Get("/level", h.stockLevel)
}

type adjustmentRequest struct {
	ItemName   string  `json:"itemName" validate:"required"`
	QuantityKg float64 `json:"quantityKg" validate:"required"`
	Note       string  `json:"note"`
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := TransactionFilter{
		ItemName:    q.Get("item"),
		Type:        TransactionType(q.Get("type")),
		ReferenceID: q.Get("reference"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	txns, err := h.engine.ListTransactions(r.Context(), filter)
	if err != nil {
		h.logger.Error("list stock transactions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, txns)
}

func (h *Handler) postAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	txn, err := h.engine.PostAdjustment(r.Context(), AdjustmentInput{
		ItemName:   req.ItemName,
		QuantityKg: req.QuantityKg,
		Note:       req.Note,
	})
	if err != nil {
		h.logger.Error("post adjustment", slog.Any("error", err), slog.String("item", req.ItemName))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, txn)
}

func (h *Handler) stockLevel(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("item")
	if name == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "item query parameter is required")
		return
	}
	kg, err := h.engine.CurrentStockKg(r.Context(), name)
	if err != nil {
		h.logger.Error("stock level", slog.Any("error", err), slog.String("item", name))
		httpx.RespondError(w, err)
		return
	}
	sufficient := true
	if raw := r.URL.Query().Get("requiredKg"); raw != "" {
		required, err := strconv.ParseFloat(raw, 64)
		if err != nil || required < 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "requiredKg must be a non-negative number")
			return
		}
		sufficient = kg >= required
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"item":       name,
		"stockKg":    kg,
		"sufficient": sufficient,
	})
}
