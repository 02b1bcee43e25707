package stock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mandibooks/mandibooks/internal/catalog"
	"github.com/mandibooks/mandibooks/internal/docstore"
	"github.com/mandibooks/mandibooks/internal/shared"
	"github.com/mandibooks/mandibooks/internal/units"
)

// MetricsPort abstracts the counters the engine feeds.
type MetricsPort interface {
	ObserveStockTransaction(txType string)
	ObserveUnmatchedLineItem()
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Engine translates business events into stock movements. Item stock and
// the transaction log are updated together inside one store transaction.
//
// A business reference (invoice or bill id) counts as processed when any
// stock transaction already carries it. The check is persisted with the
// log itself, so it survives restarts and covers sales and purchases alike.
type Engine struct {
	store    docstore.Store
	logger   *slog.Logger
	metrics  MetricsPort
	audit    AuditPort
	allowNeg bool
}

// EngineConfig groups optional settings.
type EngineConfig struct {
	// AllowNegativeStock disables the clamp-at-zero rule on reductions.
	// Off by default; the trade oversells and the books floor at zero.
	AllowNegativeStock bool
}

// NewEngine builds Engine.
func NewEngine(store docstore.Store, logger *slog.Logger, metrics MetricsPort, audit AuditPort, cfg EngineConfig) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger, metrics: metrics, audit: audit, allowNeg: cfg.AllowNegativeStock}
}

// ApplySale applies a sale's stock effect at most once per invoice id.
// Matched items are reduced by kg/30 bags, floored at zero. Lines that
// match no item are skipped with a warning but still count toward the
// universal packaging movement.
func (e *Engine) ApplySale(ctx context.Context, items []LineItem, invoiceID string) (ApplyResult, error) {
	if invoiceID != "" {
		processed, err := e.referenceProcessed(ctx, ReferenceTypeInvoice, invoiceID)
		if err != nil {
			return ApplyResult{}, err
		}
		if processed {
			e.logger.Info("sale already applied, skipping", slog.String("invoice_id", invoiceID))
			return ApplyResult{AlreadyProcessed: true}, nil
		}
	}
	return e.apply(ctx, applyParams{
		items:     items,
		txType:    TransactionTypeSale,
		refType:   ReferenceTypeInvoice,
		refID:     invoiceID,
		partyType: PartyTypeCustomer,
		direction: -1,
	})
}

// ApplyPurchase applies a purchase's stock effect, increasing matched items
// and the universal packaging stock. When billID is non-empty the same
// persisted duplicate guard as sales applies; the original system had no
// guard on purchases at all.
func (e *Engine) ApplyPurchase(ctx context.Context, items []LineItem, billID string) (ApplyResult, error) {
	if billID != "" {
		processed, err := e.referenceProcessed(ctx, ReferenceTypeBill, billID)
		if err != nil {
			return ApplyResult{}, err
		}
		if processed {
			e.logger.Info("purchase already applied, skipping", slog.String("bill_id", billID))
			return ApplyResult{AlreadyProcessed: true}, nil
		}
	}
	return e.apply(ctx, applyParams{
		items:     items,
		txType:    TransactionTypePurchase,
		refType:   ReferenceTypeBill,
		refID:     billID,
		partyType: PartyTypeSupplier,
		direction: 1,
	})
}

// RevertSale compensates a previously applied sale with return-type
// transactions. It does not consult the duplicate guard: reverting is an
// explicit operator action and may repeat.
func (e *Engine) RevertSale(ctx context.Context, items []LineItem, invoiceID string) (ApplyResult, error) {
	return e.apply(ctx, applyParams{
		items:     items,
		txType:    TransactionTypeReturn,
		refType:   ReferenceTypeInvoice,
		refID:     invoiceID,
		partyType: PartyTypeCustomer,
		direction: 1,
	})
}

// AdjustmentInput describes a manual stock correction in kilograms,
// positive or negative.
type AdjustmentInput struct {
	ItemName   string
	QuantityKg float64
	Note       string
}

// PostAdjustment applies a manual correction to a single item. Adjustments
// never move the universal packaging stock.
func (e *Engine) PostAdjustment(ctx context.Context, input AdjustmentInput) (Transaction, error) {
	if input.QuantityKg == 0 {
		return Transaction{}, ErrZeroQuantity
	}
	var txn Transaction
	err := e.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		items, err := docstore.Load[catalog.Item](ctx, tx, docstore.CollectionItems)
		if err != nil {
			return err
		}
		idx := findItem(items, input.ItemName)
		if idx < 0 {
			return catalog.ErrItemNotFound
		}
		bags := units.KgToBags(input.QuantityKg)
		prev := items[idx].StockBags
		next := prev + bags
		if next < 0 && !e.allowNeg {
			next = 0
		}
		now := time.Now().UTC()
		items[idx].StockBags = next
		items[idx].AsOfDate = now
		items[idx].UpdatedAt = now

		txn = Transaction{
			ID:                newTransactionID(now),
			ItemID:            items[idx].ID,
			ItemName:          items[idx].Name,
			Type:              TransactionTypeAdjustment,
			QuantityKg:        input.QuantityKg,
			QuantityBags:      bags,
			PreviousStockBags: prev,
			NewStockBags:      next,
			ReferenceType:     ReferenceTypeManual,
			Note:              input.Note,
			Status:            "completed",
			At:                now,
		}
		if err := appendTransactions(ctx, tx, txn); err != nil {
			return err
		}
		return docstore.Save(ctx, tx, docstore.CollectionItems, items)
	})
	if err != nil {
		return Transaction{}, err
	}
	if e.metrics != nil {
		e.metrics.ObserveStockTransaction(string(TransactionTypeAdjustment))
	}
	return txn, nil
}

// CurrentStockKg reports an item's stock in display kilograms, 0 when the
// item does not exist.
func (e *Engine) CurrentStockKg(ctx context.Context, name string) (float64, error) {
	items, err := docstore.Load[catalog.Item](ctx, e.store, docstore.CollectionItems)
	if err != nil {
		return 0, err
	}
	idx := findItem(items, name)
	if idx < 0 {
		return 0, nil
	}
	return units.RoundKg(units.BagsToKg(items[idx].StockBags)), nil
}

// HasSufficientStock reports whether the item could cover requiredKg.
// Advisory only: nothing in the sale path enforces it, oversell is allowed
// and the stock level clamps at zero.
func (e *Engine) HasSufficientStock(ctx context.Context, name string, requiredKg float64) (bool, error) {
	kg, err := e.CurrentStockKg(ctx, name)
	if err != nil {
		return false, err
	}
	return kg >= requiredKg, nil
}

// ListTransactions returns movement log entries, newest first.
func (e *Engine) ListTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	txns, err := docstore.Load[Transaction](ctx, e.store, docstore.CollectionStockTransactions)
	if err != nil {
		return nil, err
	}
	var out []Transaction
	for _, t := range txns {
		if filter.ItemName != "" && t.ItemName != filter.ItemName {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.ReferenceID != "" && t.ReferenceID != filter.ReferenceID {
			continue
		}
		out = append(out, t)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// EnsureBardana creates the universal packaging item once, logging an
// opening_stock transaction for its zero initial quantity. Safe to call on
// every startup.
func (e *Engine) EnsureBardana(ctx context.Context) error {
	err := e.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		items, err := docstore.Load[catalog.Item](ctx, tx, docstore.CollectionItems)
		if err != nil {
			return err
		}
		for _, it := range items {
			if it.IsUniversal && it.Name == catalog.BardanaName {
				return nil
			}
		}
		now := time.Now().UTC()
		item := catalog.Item{
			ID:                uuid.NewString(),
			Name:              catalog.BardanaName,
			Category:          catalog.CategoryPrimary,
			StockBags:         0,
			LowStockThreshold: defaultBardanaThresholdBags,
			AsOfDate:          now,
			IsUniversal:       true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		items = append(items, item)
		if err := docstore.Save(ctx, tx, docstore.CollectionItems, items); err != nil {
			return err
		}
		txn := Transaction{
			ID:            newTransactionID(now),
			ItemID:        item.ID,
			ItemName:      item.Name,
			Type:          TransactionTypeOpeningStock,
			ReferenceType: ReferenceTypeManual,
			Note:          "universal packaging item bootstrap",
			Status:        "completed",
			At:            now,
		}
		if err := appendTransactions(ctx, tx, txn); err != nil {
			return err
		}
		e.logger.Info("created universal packaging item", slog.String("item_id", item.ID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("stock: ensure bardana: %w", err)
	}
	return nil
}

const defaultBardanaThresholdBags = 10.0

type applyParams struct {
	items     []LineItem
	txType    TransactionType
	refType   ReferenceType
	refID     string
	partyType PartyType
	direction float64
}

func (e *Engine) apply(ctx context.Context, params applyParams) (ApplyResult, error) {
	for _, line := range params.items {
		if line.QuantityKg < 0 {
			return ApplyResult{}, fmt.Errorf("%w: %q", ErrNegativeQuantity, line.Name)
		}
	}

	var result ApplyResult
	err := e.store.WithTx(ctx, func(ctx context.Context, tx docstore.Tx) error {
		result = ApplyResult{}
		items, err := docstore.Load[catalog.Item](ctx, tx, docstore.CollectionItems)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		totalKg := 0.0
		for _, line := range params.items {
			totalKg += line.QuantityKg
			idx := findItem(items, line.Name)
			if idx < 0 {
				e.logger.Warn("line item matched no catalog item, stock not updated",
					slog.String("item_name", line.Name),
					slog.String("reference_id", params.refID),
					slog.String("type", string(params.txType)))
				if e.metrics != nil {
					e.metrics.ObserveUnmatchedLineItem()
				}
				result.Skipped = append(result.Skipped, line.Name)
				continue
			}
			txn := e.moveItem(&items[idx], line.QuantityKg, line.Rate, params, now)
			result.Transactions = append(result.Transactions, txn)
		}

		// The universal packaging item moves with the aggregate volume of
		// the whole document, matched lines or not.
		if totalKg > 0 && params.txType != TransactionTypeAdjustment {
			if idx := findUniversal(items); idx >= 0 {
				txn := e.moveItem(&items[idx], totalKg, 0, params, now)
				result.Transactions = append(result.Transactions, txn)
			} else {
				e.logger.Warn("universal packaging item missing, co-movement skipped",
					slog.String("reference_id", params.refID))
			}
		}

		if err := appendTransactions(ctx, tx, result.Transactions...); err != nil {
			return err
		}
		return docstore.Save(ctx, tx, docstore.CollectionItems, items)
	})
	if err != nil {
		return ApplyResult{}, fmt.Errorf("stock: apply %s: %w", params.txType, err)
	}

	if e.metrics != nil {
		for range result.Transactions {
			e.metrics.ObserveStockTransaction(string(params.txType))
		}
	}
	if e.audit != nil && params.refID != "" {
		_ = e.audit.Record(ctx, shared.AuditLog{
			Action:   fmt.Sprintf("stock:%s", params.txType),
			Entity:   "stock_transaction",
			EntityID: params.refID,
			Meta: map[string]any{
				"reference_type": params.refType,
				"lines":          len(params.items),
				"skipped":        len(result.Skipped),
			},
		})
	}
	return result, nil
}

// moveItem mutates one item's stock and builds the matching log entry.
func (e *Engine) moveItem(item *catalog.Item, quantityKg, rate float64, params applyParams, now time.Time) Transaction {
	bags := units.KgToBags(quantityKg)
	prev := item.StockBags
	next := prev + params.direction*bags
	if next < 0 && !e.allowNeg {
		next = 0
	}
	item.StockBags = next
	item.AsOfDate = now
	item.UpdatedAt = now

	return Transaction{
		ID:                newTransactionID(now),
		ItemID:            item.ID,
		ItemName:          item.Name,
		Type:              params.txType,
		QuantityKg:        quantityKg,
		QuantityBags:      bags,
		PreviousStockBags: prev,
		NewStockBags:      next,
		ReferenceType:     params.refType,
		ReferenceID:       params.refID,
		Rate:              rate,
		TotalValue:        quantityKg * rate,
		PartyType:         params.partyType,
		Status:            "completed",
		At:                now,
	}
}

func (e *Engine) referenceProcessed(ctx context.Context, refType ReferenceType, refID string) (bool, error) {
	txns, err := docstore.Load[Transaction](ctx, e.store, docstore.CollectionStockTransactions)
	if err != nil {
		return false, err
	}
	for _, t := range txns {
		if t.ReferenceType == refType && t.ReferenceID == refID {
			return true, nil
		}
	}
	return false, nil
}

func appendTransactions(ctx context.Context, tx docstore.Tx, txns ...Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	existing, err := docstore.Load[Transaction](ctx, tx, docstore.CollectionStockTransactions)
	if err != nil {
		return err
	}
	existing = append(existing, txns...)
	return docstore.Save(ctx, tx, docstore.CollectionStockTransactions, existing)
}

// findItem matches by exact name. Typos in line items silently miss; the
// caller surfaces that through ApplyResult.Skipped and a warn log.
func findItem(items []catalog.Item, name string) int {
	for i, it := range items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

func findUniversal(items []catalog.Item) int {
	for i, it := range items {
		if it.IsUniversal {
			return i
		}
	}
	return -1
}

// newTransactionID builds a date-prefixed id with a random suffix, unique
// enough within a day at normal transaction rates.
func newTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("TXN-%s-%s", now.Format("20060102"), suffix)
}
