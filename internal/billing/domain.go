package billing

import (
	"fmt"
	"time"

	"github.com/mandibooks/mandibooks/internal/shared"
)

// DocumentType separates the two billing document streams. Numbering is
// sequential and scoped independently per type.
type DocumentType string

const (
	// DocumentTypeInvoice bills a customer for a sale.
	DocumentTypeInvoice DocumentType = "invoice"
	// DocumentTypeBill records a purchase from a supplier.
	DocumentTypeBill DocumentType = "bill"
)

// PaymentDirection separates incoming from outgoing payments. Each
// direction keeps its own number sequence.
type PaymentDirection string

const (
	// PaymentIn is money received from a customer.
	PaymentIn PaymentDirection = "in"
	// PaymentOut is money paid to a supplier.
	PaymentOut PaymentDirection = "out"
)

// LineItem is one row of a billing document. Quantity is kilograms;
// Total is always Quantity * Rate.
type LineItem struct {
	Name       string  `json:"name"`
	QuantityKg float64 `json:"quantity"`
	Rate       float64 `json:"rate"`
	Total      float64 `json:"total"`
}

// Document is a sale invoice or purchase bill. Total is the sum of line
// totals, computed when the document is created.
type Document struct {
	ID          string       `json:"id"`
	Number      int          `json:"number"`
	Type        DocumentType `json:"type"`
	PartyName   string       `json:"partyName"`
	PhoneNumber string       `json:"phoneNumber"`
	Items       []LineItem   `json:"items"`
	Total       float64      `json:"total"`
	Date        time.Time    `json:"date"`
	Status      string       `json:"status"`
}

// Payment is one incoming or outgoing payment. TotalAmount snapshots the
// party's balance at recording time; it is informational only and never
// feeds the ledger fold.
type Payment struct {
	ID          string           `json:"id"`
	Number      int              `json:"number"`
	Direction   PaymentDirection `json:"direction"`
	PartyName   string           `json:"partyName"`
	PhoneNumber string           `json:"phoneNumber"`
	Amount      float64          `json:"amount"`
	TotalAmount float64          `json:"totalAmount"`
	Date        time.Time        `json:"date"`
	Status      string           `json:"status"`
}

// ErrDocumentNotFound indicates no document matches the given id.
var ErrDocumentNotFound = fmt.Errorf("billing: document %w", shared.ErrNotFound)
