package billing

import (
	"context"
	"fmt"

	"github.com/mandibooks/mandibooks/internal/docstore"
)

// Repository persists billing documents and payments in the document store.
type Repository struct {
	store docstore.Store
}

// NewRepository constructs Repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

func documentCollection(t DocumentType) (docstore.Collection, error) {
	switch t {
	case DocumentTypeInvoice:
		return docstore.CollectionSalesInvoices, nil
	case DocumentTypeBill:
		return docstore.CollectionPurchaseBills, nil
	default:
		return "", fmt.Errorf("billing: unknown document type %q", t)
	}
}

func paymentCollection(d PaymentDirection) (docstore.Collection, error) {
	switch d {
	case PaymentIn:
		return docstore.CollectionSalesPayments, nil
	case PaymentOut:
		return docstore.CollectionPurchasePayments, nil
	default:
		return "", fmt.Errorf("billing: unknown payment direction %q", d)
	}
}

// ListDocuments returns all documents of one type.
func (r *Repository) ListDocuments(ctx context.Context, t DocumentType) ([]Document, error) {
	coll, err := documentCollection(t)
	if err != nil {
		return nil, err
	}
	return docstore.Load[Document](ctx, r.store, coll)
}

// GetDocument returns one document by id.
func (r *Repository) GetDocument(ctx context.Context, t DocumentType, id string) (Document, error) {
	docs, err := r.ListDocuments(ctx, t)
	if err != nil {
		return Document{}, err
	}
	for _, d := range docs {
		if d.ID == id {
			return d, nil
		}
	}
	return Document{}, ErrDocumentNotFound
}

// InsertDocument appends doc, assigning the next sequential number within
// its type.
func (r *Repository) InsertDocument(ctx context.Context, doc Document) (Document, error) {
	coll, err := documentCollection(doc.Type)
	if err != nil {
		return Document{}, err
	}
	err = r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		docs, err := docstore.Load[Document](ctx, tx, coll)
		if err != nil {
			return err
		}
		doc.Number = nextNumber(docs)
		docs = append(docs, doc)
		return docstore.Save(ctx, tx, coll, docs)
	})
	if err != nil {
		return Document{}, err
	}
	return doc, nil
}

// DeleteDocument removes the document with the given id.
func (r *Repository) DeleteDocument(ctx context.Context, t DocumentType, id string) error {
	coll, err := documentCollection(t)
	if err != nil {
		return err
	}
	return r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		docs, err := docstore.Load[Document](ctx, tx, coll)
		if err != nil {
			return err
		}
		for i, d := range docs {
			if d.ID == id {
				docs = append(docs[:i], docs[i+1:]...)
				return docstore.Save(ctx, tx, coll, docs)
			}
		}
		return ErrDocumentNotFound
	})
}

// ListPayments returns all payments of one direction.
func (r *Repository) ListPayments(ctx context.Context, d PaymentDirection) ([]Payment, error) {
	coll, err := paymentCollection(d)
	if err != nil {
		return nil, err
	}
	return docstore.Load[Payment](ctx, r.store, coll)
}

// InsertPayment appends p, assigning the next sequential number within its
// direction.
func (r *Repository) InsertPayment(ctx context.Context, p Payment) (Payment, error) {
	coll, err := paymentCollection(p.Direction)
	if err != nil {
		return Payment{}, err
	}
	err = r.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		payments, err := docstore.Load[Payment](ctx, tx, coll)
		if err != nil {
			return err
		}
		p.Number = nextPaymentNumber(payments)
		payments = append(payments, p)
		return docstore.Save(ctx, tx, coll, payments)
	})
	if err != nil {
		return Payment{}, err
	}
	return p, nil
}

func nextNumber(docs []Document) int {
	max := 0
	for _, d := range docs {
		if d.Number > max {
			max = d.Number
		}
	}
	return max + 1
}

func nextPaymentNumber(payments []Payment) int {
	max := 0
	for _, p := range payments {
		if p.Number > max {
			max = p.Number
		}
	}
	return max + 1
}
