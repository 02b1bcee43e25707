package ledger

import "time"

// PartyKind selects which relationship direction a ledger covers.
type PartyKind string

const (
	// PartyCustomer folds sale invoices against incoming payments.
	// Positive balance: the customer owes the business.
	PartyCustomer PartyKind = "customer"
	// PartySupplier folds purchase bills against outgoing payments.
	// Positive balance: the business owes the supplier.
	PartySupplier PartyKind = "supplier"
)

// Event is the minimal record the fold needs from either stream: a billing
// document's total or a payment's amount, attributed to a party.
type Event struct {
	PartyName   string    `json:"partyName"`
	PhoneNumber string    `json:"phoneNumber"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

// PartyBalance is one derived row of the party ledger. It is never stored;
// it is recomputed from the event streams on demand.
type PartyBalance struct {
	Name                string    `json:"name"`
	PhoneNumber         string    `json:"phoneNumber"`
	TotalBilled         float64   `json:"totalBilled"`
	TotalPaid           float64   `json:"totalPaid"`
	Balance             float64   `json:"balance"`
	LastTransactionDate time.Time `json:"lastTransactionDate"`
}
