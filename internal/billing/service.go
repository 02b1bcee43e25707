package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mandibooks/mandibooks/internal/ledger"
	"github.com/mandibooks/mandibooks/internal/shared"
	"github.com/mandibooks/mandibooks/internal/stock"
)

// StockPort is the slice of the stock engine billing drives.
type StockPort interface {
	ApplySale(ctx context.Context, items []stock.LineItem, invoiceID string) (stock.ApplyResult, error)
	ApplyPurchase(ctx context.Context, items []stock.LineItem, billID string) (stock.ApplyResult, error)
	RevertSale(ctx context.Context, items []stock.LineItem, invoiceID string) (stock.ApplyResult, error)
}

// LedgerPort exposes balance snapshots and cache invalidation.
type LedgerPort interface {
	Balance(ctx context.Context, kind ledger.PartyKind, name, phone string) (float64, error)
	Invalidate(ctx context.Context) error
}

// DispatchPort hands finished documents to the delivery pipeline
// (PDF/WhatsApp). Dispatch happens only after the state mutation succeeds
// and failures never roll the document back.
type DispatchPort interface {
	EnqueueDocumentDispatch(ctx context.Context, docType, docID, partyName, phoneNumber string) error
}

// Service creates billing documents and payments and drives their stock
// and ledger side effects.
type Service struct {
	repo     *Repository
	stock    StockPort
	ledger   LedgerPort
	dispatch DispatchPort
	logger   *slog.Logger
}

// NewService builds Service. dispatch may be nil.
func NewService(repo *Repository, stockPort StockPort, ledgerPort LedgerPort, dispatch DispatchPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, stock: stockPort, ledger: ledgerPort, dispatch: dispatch, logger: logger}
}

// LineItemInput is one document row as submitted.
type LineItemInput struct {
	Name       string
	QuantityKg float64
	Rate       float64
}

// CreateDocumentInput describes a new invoice or bill.
type CreateDocumentInput struct {
	PartyName   string
	PhoneNumber string
	Items       []LineItemInput
	Date        time.Time
}

// CreateInvoice persists a sale invoice and applies its stock effect.
// The invoice write and the stock application are two steps: a stock
// failure leaves the invoice in place and surfaces the error so the
// caller can retry the application (which is idempotent per invoice id).
func (s *Service) CreateInvoice(ctx context.Context, input CreateDocumentInput) (Document, error) {
	doc, err := s.createDocument(ctx, DocumentTypeInvoice, input)
	if err != nil {
		return Document{}, err
	}
	result, err := s.stock.ApplySale(ctx, stockLines(doc.Items), doc.ID)
	if err != nil {
		return Document{}, fmt.Errorf("billing: apply sale for invoice %s: %w", doc.ID, err)
	}
	s.finishWrite(ctx, doc, result)
	return doc, nil
}

// CreateBill persists a purchase bill and applies its stock effect.
func (s *Service) CreateBill(ctx context.Context, input CreateDocumentInput) (Document, error) {
	doc, err := s.createDocument(ctx, DocumentTypeBill, input)
	if err != nil {
		return Document{}, err
	}
	result, err := s.stock.ApplyPurchase(ctx, stockLines(doc.Items), doc.ID)
	if err != nil {
		return Document{}, fmt.Errorf("billing: apply purchase for bill %s: %w", doc.ID, err)
	}
	s.finishWrite(ctx, doc, result)
	return doc, nil
}

// DeleteInvoice removes an invoice and compensates its stock effect with
// return transactions.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	doc, err := s.repo.GetDocument(ctx, DocumentTypeInvoice, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteDocument(ctx, DocumentTypeInvoice, id); err != nil {
		return err
	}
	if _, err := s.stock.RevertSale(ctx, stockLines(doc.Items), id); err != nil {
		return fmt.Errorf("billing: revert sale for invoice %s: %w", id, err)
	}
	if err := s.ledger.Invalidate(ctx); err != nil {
		s.logger.Warn("ledger cache invalidation failed", slog.Any("error", err))
	}
	return nil
}

// ListDocuments returns documents of one type, newest number first.
func (s *Service) ListDocuments(ctx context.Context, t DocumentType) ([]Document, error) {
	docs, err := s.repo.ListDocuments(ctx, t)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(docs)-1; i < j; i, j = i+1, j-1 {
		docs[i], docs[j] = docs[j], docs[i]
	}
	return docs, nil
}

// GetDocument returns one document by id.
func (s *Service) GetDocument(ctx context.Context, t DocumentType, id string) (Document, error) {
	return s.repo.GetDocument(ctx, t, id)
}

// RecordPaymentInput describes a new payment.
type RecordPaymentInput struct {
	Direction   PaymentDirection
	PartyName   string
	PhoneNumber string
	Amount      float64
	Date        time.Time
}

// RecordPayment persists a payment, snapshotting the party's balance at
// recording time into TotalAmount.
func (s *Service) RecordPayment(ctx context.Context, input RecordPaymentInput) (Payment, error) {
	name := strings.TrimSpace(input.PartyName)
	if name == "" {
		return Payment{}, fmt.Errorf("%w: party name required", shared.ErrInvalidInput)
	}
	if input.Amount <= 0 {
		return Payment{}, fmt.Errorf("%w: amount must be positive", shared.ErrInvalidInput)
	}
	kind := ledger.PartyCustomer
	if input.Direction == PaymentOut {
		kind = ledger.PartySupplier
	}
	snapshot, err := s.ledger.Balance(ctx, kind, name, input.PhoneNumber)
	if err != nil {
		return Payment{}, err
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	payment := Payment{
		ID:          uuid.NewString(),
		Direction:   input.Direction,
		PartyName:   name,
		PhoneNumber: input.PhoneNumber,
		Amount:      input.Amount,
		TotalAmount: snapshot,
		Date:        date,
		Status:      "completed",
	}
	payment, err = s.repo.InsertPayment(ctx, payment)
	if err != nil {
		return Payment{}, err
	}
	if err := s.ledger.Invalidate(ctx); err != nil {
		s.logger.Warn("ledger cache invalidation failed", slog.Any("error", err))
	}
	return payment, nil
}

// ListPayments returns payments of one direction, newest number first.
func (s *Service) ListPayments(ctx context.Context, d PaymentDirection) ([]Payment, error) {
	payments, err := s.repo.ListPayments(ctx, d)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(payments)-1; i < j; i, j = i+1, j-1 {
		payments[i], payments[j] = payments[j], payments[i]
	}
	return payments, nil
}

func (s *Service) createDocument(ctx context.Context, t DocumentType, input CreateDocumentInput) (Document, error) {
	name := strings.TrimSpace(input.PartyName)
	if name == "" {
		return Document{}, fmt.Errorf("%w: party name required", shared.ErrInvalidInput)
	}
	if len(input.Items) == 0 {
		return Document{}, fmt.Errorf("%w: at least one line item required", shared.ErrInvalidInput)
	}
	items := make([]LineItem, 0, len(input.Items))
	total := 0.0
	for _, li := range input.Items {
		if li.QuantityKg < 0 || li.Rate < 0 {
			return Document{}, fmt.Errorf("%w: quantity and rate must be >= 0", shared.ErrInvalidInput)
		}
		line := LineItem{
			Name:       strings.TrimSpace(li.Name),
			QuantityKg: li.QuantityKg,
			Rate:       li.Rate,
			Total:      li.QuantityKg * li.Rate,
		}
		total += line.Total
		items = append(items, line)
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	doc := Document{
		ID:          uuid.NewString(),
		Type:        t,
		PartyName:   name,
		PhoneNumber: input.PhoneNumber,
		Items:       items,
		Total:       total,
		Date:        date,
		Status:      "completed",
	}
	return s.repo.InsertDocument(ctx, doc)
}

func (s *Service) finishWrite(ctx context.Context, doc Document, result stock.ApplyResult) {
	if len(result.Skipped) > 0 {
		s.logger.Warn("document contained line items with no matching catalog item",
			slog.String("document_id", doc.ID),
			slog.Any("skipped", result.Skipped))
	}
	if err := s.ledger.Invalidate(ctx); err != nil {
		s.logger.Warn("ledger cache invalidation failed", slog.Any("error", err))
	}
	if s.dispatch != nil {
		if err := s.dispatch.EnqueueDocumentDispatch(ctx, string(doc.Type), doc.ID, doc.PartyName, doc.PhoneNumber); err != nil {
			s.logger.Warn("document dispatch enqueue failed", slog.Any("error", err), slog.String("document_id", doc.ID))
		}
	}
}

func stockLines(items []LineItem) []stock.LineItem {
	lines := make([]stock.LineItem, 0, len(items))
	for _, li := range items {
		lines = append(lines, stock.LineItem{Name: li.Name, QuantityKg: li.QuantityKg, Rate: li.Rate})
	}
	return lines
}
