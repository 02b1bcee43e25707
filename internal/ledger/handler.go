package ledger

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mandibooks/mandibooks/internal/platform/httpx"
)

// Handler serves the derived party ledger views.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/customers", h.listParties(PartyCustomer))
	r.Get("/suppliers", h.listParties(PartySupplier))
	r.Get("/customers/balance", h.partyBalance(PartyCustomer))
	r.Get("/suppliers/balance", h.partyBalance(PartySupplier))
}

func (h *Handler) listParties(kind PartyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parties, err := h.service.Parties(r.Context(), kind)
		if err != nil {
			h.logger.Error("list parties", slog.Any("error", err), slog.String("kind", string(kind)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, parties)
	}
}

func (h *Handler) partyBalance(kind PartyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		phone := r.URL.Query().Get("phone")
		if name == "" {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name query parameter is required")
			return
		}
		balance, err := h.service.Balance(r.Context(), kind, name, phone)
		if err != nil {
			h.logger.Error("party balance", slog.Any("error", err), slog.String("kind", string(kind)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{
			"name":    name,
			"phone":   phone,
			"balance": balance,
		})
	}
}
