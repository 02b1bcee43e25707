package stock

import (
	"fmt"
	"time"

	"github.com/mandibooks/mandibooks/internal/shared"
)

// TransactionType enumerates stock movement kinds.
type TransactionType string

const (
	// TransactionTypeSale reduces stock.
	TransactionTypeSale TransactionType = "sale"
	// TransactionTypePurchase increases stock.
	TransactionTypePurchase TransactionType = "purchase"
	// TransactionTypeReturn compensates an earlier sale.
	TransactionTypeReturn TransactionType = "return"
	// TransactionTypeAdjustment is a manual correction, either direction.
	TransactionTypeAdjustment TransactionType = "adjustment"
	// TransactionTypeOpeningStock records an item's initial quantity.
	TransactionTypeOpeningStock TransactionType = "opening_stock"
)

// ReferenceType names the business document that caused a movement.
type ReferenceType string

const (
	// ReferenceTypeInvoice links a movement to a sale invoice.
	ReferenceTypeInvoice ReferenceType = "invoice"
	// ReferenceTypeBill links a movement to a purchase bill.
	ReferenceTypeBill ReferenceType = "bill"
	// ReferenceTypeManual marks operator-initiated movements.
	ReferenceTypeManual ReferenceType = "manual"
)

// PartyType labels which side of the trade a movement belongs to.
type PartyType string

const (
	// PartyTypeCustomer marks customer-facing movements.
	PartyTypeCustomer PartyType = "customer"
	// PartyTypeSupplier marks supplier-facing movements.
	PartyTypeSupplier PartyType = "supplier"
)

// Transaction is one immutable entry in the stock movement log. Quantities
// are carried in both units; quantityBags is always quantityKg / 30.
type Transaction struct {
	ID                string          `json:"id"`
	ItemID            string          `json:"itemId"`
	ItemName          string          `json:"itemName"`
	Type              TransactionType `json:"type"`
	QuantityKg        float64         `json:"quantityKg"`
	QuantityBags      float64         `json:"quantityBags"`
	PreviousStockBags float64         `json:"previousStockBags"`
	NewStockBags      float64         `json:"newStockBags"`
	ReferenceType     ReferenceType   `json:"referenceType,omitempty"`
	ReferenceID       string          `json:"referenceId,omitempty"`
	Rate              float64         `json:"rate,omitempty"`
	TotalValue        float64         `json:"totalValue,omitempty"`
	PartyType         PartyType       `json:"partyType,omitempty"`
	Note              string          `json:"note,omitempty"`
	Status            string          `json:"status"`
	At                time.Time       `json:"at"`
}

// LineItem is one sale or purchase line as entered at the counter.
type LineItem struct {
	Name       string
	QuantityKg float64
	Rate       float64
}

// ApplyResult reports what a sale or purchase application did. Skipped
// lists line-item names that matched no catalog item; those lines still
// move the universal packaging stock.
type ApplyResult struct {
	Transactions     []Transaction
	Skipped          []string
	AlreadyProcessed bool
}

// TransactionFilter narrows listing of the movement log.
type TransactionFilter struct {
	ItemName    string
	Type        TransactionType
	ReferenceID string
	Limit       int
}

// ErrNegativeQuantity indicates a line item with a negative kilogram
// quantity, which the engine refuses regardless of upstream validation.
var ErrNegativeQuantity = fmt.Errorf("%w: quantity must be >= 0", shared.ErrInvalidInput)

// ErrZeroQuantity indicates a manual adjustment of zero.
var ErrZeroQuantity = fmt.Errorf("%w: quantity must be non zero", shared.ErrInvalidInput)
