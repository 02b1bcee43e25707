package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mandibooks/mandibooks/internal/platform/httpx"
)

// Handler manages catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listItems)
	r.Post("/", h.createItem)
	r.Get("/low-stock", h.listLowStock)
	r.Get("/{id}", h.getItem)
	r.Patch("/{id}", h.updateItem)
	r.Delete("/{id}", h.deleteItem)
}

type createItemRequest struct {
	Name                string  `json:"name" validate:"required"`
	Category            string  `json:"category" validate:"required"`
	PurchasePrice       float64 `json:"purchasePrice" validate:"gte=0"`
	SalePrice           float64 `json:"salePrice" validate:"gte=0"`
	OpeningStockKg      float64 `json:"openingStockKg" validate:"gte=0"`
	LowStockThresholdKg float64 `json:"lowStockThresholdKg" validate:"gte=0"`
}

type updateItemRequest struct {
	PurchasePrice       *float64 `json:"purchasePrice" validate:"omitempty,gte=0"`
	SalePrice           *float64 `json:"salePrice" validate:"omitempty,gte=0"`
	LowStockThresholdKg *float64 `json:"lowStockThresholdKg" validate:"omitempty,gte=0"`
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	item, err := h.service.Create(r.Context(), CreateItemInput{
		Name:                req.Name,
		Category:            Category(req.Category),
		PurchasePrice:       req.PurchasePrice,
		SalePrice:           req.SalePrice,
		OpeningStockKg:      req.OpeningStockKg,
		LowStockThresholdKg: req.LowStockThresholdKg,
	})
	if err != nil {
		h.logger.Error("create item", slog.Any("error", err), slog.String("name", req.Name))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body is not valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	item, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateItemInput{
		PurchasePrice:       req.PurchasePrice,
		SalePrice:           req.SalePrice,
		LowStockThresholdKg: req.LowStockThresholdKg,
	})
	if err != nil {
		h.logger.Error("update item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete item", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.LowStock(r.Context())
	if err != nil {
		h.logger.Error("list low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}
