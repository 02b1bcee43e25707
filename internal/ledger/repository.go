package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/mandibooks/mandibooks/internal/docstore"
)

// Repository reads the event streams the fold consumes. It decodes only
// the fields the ledger needs from the billing collections: party
// identity, an amount, and a date.
type Repository struct {
	store docstore.Reader
}

// NewRepository constructs Repository.
func NewRepository(store docstore.Reader) *Repository {
	return &Repository{store: store}
}

type documentRecord struct {
	PartyName   string    `json:"partyName"`
	PhoneNumber string    `json:"phoneNumber"`
	Total       float64   `json:"total"`
	Date        time.Time `json:"date"`
}

type paymentRecord struct {
	PartyName   string    `json:"partyName"`
	PhoneNumber string    `json:"phoneNumber"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

// Events loads the document and payment streams for one relationship
// direction.
func (r *Repository) Events(ctx context.Context, kind PartyKind) (documents, payments []Event, err error) {
	var docColl, payColl docstore.Collection
	switch kind {
	case PartyCustomer:
		docColl, payColl = docstore.CollectionSalesInvoices, docstore.CollectionSalesPayments
	case PartySupplier:
		docColl, payColl = docstore.CollectionPurchaseBills, docstore.CollectionPurchasePayments
	default:
		return nil, nil, fmt.Errorf("ledger: unknown party kind %q", kind)
	}

	docs, err := docstore.Load[documentRecord](ctx, r.store, docColl)
	if err != nil {
		return nil, nil, err
	}
	pays, err := docstore.Load[paymentRecord](ctx, r.store, payColl)
	if err != nil {
		return nil, nil, err
	}

	documents = make([]Event, 0, len(docs))
	for _, d := range docs {
		documents = append(documents, Event{PartyName: d.PartyName, PhoneNumber: d.PhoneNumber, Amount: d.Total, Date: d.Date})
	}
	payments = make([]Event, 0, len(pays))
	for _, p := range pays {
		payments = append(payments, Event{PartyName: p.PartyName, PhoneNumber: p.PhoneNumber, Amount: p.Amount, Date: p.Date})
	}
	return documents, payments, nil
}
