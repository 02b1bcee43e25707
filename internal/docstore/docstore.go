// Package docstore is the key-value document store backing the application.
// Data lives in named collections that are always read and written whole;
// there is no partial-update API.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names a document collection.
type Collection string

const (
	// CollectionItems holds catalog items.
	CollectionItems Collection = "items"
	// CollectionSalesInvoices holds customer invoices.
	CollectionSalesInvoices Collection = "sales-invoices"
	// CollectionSalesPayments holds incoming payments.
	CollectionSalesPayments Collection = "sales-payments"
	// CollectionPurchaseBills holds supplier bills.
	CollectionPurchaseBills Collection = "purchase-bills"
	// CollectionPurchasePayments holds outgoing payments.
	CollectionPurchasePayments Collection = "purchase-payments"
	// CollectionStockTransactions holds the append-only stock movement log.
	CollectionStockTransactions Collection = "stock-transactions"
	// CollectionAuditLogs holds audit records.
	CollectionAuditLogs Collection = "audit-logs"
)

// Reader exposes read access to collections. A missing collection reads as
// an empty list.
type Reader interface {
	Get(ctx context.Context, c Collection) ([]json.RawMessage, error)
}

// Writer replaces the full content of a collection.
type Writer interface {
	Put(ctx context.Context, c Collection, docs []json.RawMessage) error
}

// Tx groups reads and writes that must commit together.
type Tx interface {
	Reader
	Writer
}

// Store is the full document store contract. WithTx runs fn atomically:
// either every Put inside fn is visible afterwards or none is.
type Store interface {
	Reader
	Writer
	WithTx(ctx context.Context, fn func(context.Context, Tx) error) error
}

// Load reads a collection and decodes every document into T.
func Load[T any](ctx context.Context, r Reader, c Collection) ([]T, error) {
	raw, err := r.Get(ctx, c)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for _, doc := range raw {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("docstore: decode %s document: %w", c, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Save encodes docs and replaces the collection content.
func Save[T any](ctx context.Context, w Writer, c Collection, docs []T) error {
	raw := make([]json.RawMessage, 0, len(docs))
	for _, v := range docs {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("docstore: encode %s document: %w", c, err)
		}
		raw = append(raw, b)
	}
	return w.Put(ctx, c, raw)
}
