package billing

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mandibooks/mandibooks/internal/platform/httpx"
)

// Handler manages billing endpoints. Invoices and bills share one code
// path; only the document type and the payment direction differ.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers billing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.listDocuments(DocumentTypeInvoice))
		r.Post("/", h.createInvoice)
		r.Get("/{id}", h.getDocument(DocumentTypeInvoice))
		r.Delete("/{id}", h.deleteInvoice)
	})
	r.Route("/bills", func(r chi.Router) {
		r.Get("/", h.listDocuments(DocumentTypeBill))
		r.Post("/", h.createBill)
		r.Get("/{id}", h.getDocument(DocumentTypeBill))
	})
	r.Route("/payments", func(r chi.Router) {
		r.Get("/in", h.listPayments(PaymentIn))
		r.Post("/in", h.recordPayment(PaymentIn))
		r.Get("/out", h.listPayments(PaymentOut))
		r.Post("/out", h.recordPayment(PaymentOut))
	})
}

type lineItemRequest struct {
	Name       string  `json:"name" validate:"required"`
	QuantityKg float64 `json:"quantityKg" validate:"gte=0"`
	Rate       float64 `json:"rate" validate:"gte=0"`
}

type createDocumentRequest struct {
	PartyName   string            `json:"partyName" validate:"required"`
	PhoneNumber string            `json:"phoneNumber"`
	Items       []lineItemRequest `json:"items" validate:"required,min=1,dive"`
	Date        time.Time         `json:"date"`
}

type recordPaymentRequest struct {
	PartyName   string    `json:"partyName" validate:"required"`
	PhoneNumber string    `json:"phoneNumber"`
	Amount      float64   `json:"amount" validate:"gt=0"`
	Date        time.Time `json:"date"`
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	doc, err := h.service.CreateInvoice(r.Context(), input)
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}
	doc, err := h.service.CreateBill(r.Context(), input)
	if err != nil {
		h.logger.Error("create bill", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listDocuments(t DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.service.ListDocuments(r.Context(), t)
		if err != nil {
			h.logger.Error("list documents", slog.Any("error", err), slog.String("type", string(t)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, docs)
	}
}

func (h *Handler) getDocument(t DocumentType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := h.service.GetDocument(r.Context(), t, chi.URLParam(r, "id"))
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, doc)
	}
}

func (h *Handler) recordPayment(d PaymentDirection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordPaymentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body is not valid JSON")
			return
		}
		if err := h.validate.Struct(req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		payment, err := h.service.RecordPayment(r.Context(), RecordPaymentInput{
			Direction:   d,
			PartyName:   req.PartyName,
			PhoneNumber: req.PhoneNumber,
			Amount:      req.Amount,
			Date:        req.Date,
		})
		if err != nil {
			h.logger.Error("record payment", slog.Any("error", err), slog.String("direction", string(d)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, payment)
	}
}

func (h *Handler) listPayments(d PaymentDirection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payments, err := h.service.ListPayments(r.Context(), d)
		if err != nil {
			h.logger.Error("list payments", slog.Any("error", err), slog.String("direction", string(d)))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, payments)
	}
}

func (h *Handler) decodeDocument(w http.ResponseWriter, r *http.Request) (CreateDocumentInput, bool) {
	var req createDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "request body is not valid JSON")
		return CreateDocumentInput{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return CreateDocumentInput{}, false
	}
	items := make([]LineItemInput, 0, len(req.Items))
	for _, li := range req.Items {
		items = append(items, LineItemInput{Name: li.Name, QuantityKg: li.QuantityKg, Rate: li.Rate})
	}
	return CreateDocumentInput{
		PartyName:   req.PartyName,
		PhoneNumber: req.PhoneNumber,
		Items:       items,
		Date:        req.Date,
	}, true
}
