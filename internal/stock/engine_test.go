package stock

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mandibooks/mandibooks/internal/catalog"
	"github.com/mandibooks/mandibooks/internal/docstore"
)

func newTestEngine(t *testing.T) (*Engine, *docstore.MemoryStore) {
	t.Helper()
	store := docstore.NewMemoryStore()
	engine := NewEngine(store, slog.Default(), nil, nil, EngineConfig{})
	return engine, store
}

func seedItems(t *testing.T, store *docstore.MemoryStore, items ...catalog.Item) {
	t.Helper()
	now := time.Now().UTC()
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}
	require.NoError(t, docstore.Save(context.Background(), store, docstore.CollectionItems, items))
}

func itemStock(t *testing.T, store *docstore.MemoryStore, name string) float64 {
	t.Helper()
	items, err := docstore.Load[catalog.Item](context.Background(), store, docstore.CollectionItems)
	require.NoError(t, err)
	for _, it := range items {
		if it.Name == name {
			return it.StockBags
		}
	}
	t.Fatalf("item %q not found", name)
	return 0
}

func TestApplySaleReducesStockAndMovesPackaging(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 10},
		catalog.Item{Name: catalog.BardanaName, Category: catalog.CategoryPrimary, StockBags: 20, IsUniversal: true},
	)

	result, err := engine.ApplySale(context.Background(), []LineItem{
		{Name: "Wheat", QuantityKg: 60, Rate: 25},
	}, "inv-1")
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Skipped)
	assert.False(t, result.AlreadyProcessed)

	assert.InDelta(t, 8.0, itemStock(t, store, "Wheat"), 1e-9)
	assert.InDelta(t, 18.0, itemStock(t, store, catalog.BardanaName), 1e-9)

	wheat := result.Transactions[0]
	assert.Equal(t, TransactionTypeSale, wheat.Type)
	assert.InDelta(t, 2.0, wheat.QuantityBags, 1e-9)
	assert.InDelta(t, 10.0, wheat.PreviousStockBags, 1e-9)
	assert.InDelta(t, 8.0, wheat.NewStockBags, 1e-9)
	assert.Equal(t, "inv-1", wheat.ReferenceID)
	assert.InDelta(t, 1500.0, wheat.TotalValue, 1e-9)
}

func TestApplySaleIdempotentPerInvoice(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 10},
		catalog.Item{Name: catalog.BardanaName, Category: catalog.CategoryPrimary, StockBags: 20, IsUniversal: true},
	)

	lines := []LineItem{{Name: "Wheat", QuantityKg: 30}}
	first, err := engine.ApplySale(context.Background(), lines, "inv-dup")
	require.NoError(t, err)
	require.False(t, first.AlreadyProcessed)

	second, err := engine.ApplySale(context.Background(), lines, "inv-dup")
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Empty(t, second.Transactions)

	assert.InDelta(t, 9.0, itemStock(t, store, "Wheat"), 1e-9)
}

func TestApplySaleClampsAtZero(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 1},
		catalog.Item{Name: catalog.BardanaName, Category: catalog.CategoryPrimary, StockBags: 0.5, IsUniversal: true},
	)

	result, err := engine.ApplySale(context.Background(), []LineItem{
		{Name: "Wheat", QuantityKg: 90},
	}, "inv-over")
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)

	assert.InDelta(t, 0.0, itemStock(t, store, "Wheat"), 1e-9)
	assert.InDelta(t, 0.0, itemStock(t, store, catalog.BardanaName), 1e-9)
	assert.InDelta(t, 0.0, result.Transactions[0].NewStockBags, 1e-9)
}

func TestApplySaleAllowsNegativeWhenConfigured(t *testing.T) {
	store := docstore.NewMemoryStore()
	engine := NewEngine(store, slog.Default(), nil, nil, EngineConfig{AllowNegativeStock: true})
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 1},
	)

	_, err := engine.ApplySale(context.Background(), []LineItem{{Name: "Wheat", QuantityKg: 90}}, "inv-neg")
	require.NoError(t, err)
	assert.InDelta(t, -2.0, itemStock(t, store, "Wheat"), 1e-9)
}

func TestApplySaleSkipsUnmatchedLinesButMovesPackaging(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 10},
		catalog.Item{Name: catalog.BardanaName, Category: catalog.CategoryPrimary, StockBags: 20, IsUniversal: true},
	)

	result, err := engine.ApplySale(context.Background(), []LineItem{
		{Name: "Wheat", QuantityKg: 30},
		{Name: "Weat", QuantityKg: 60},
	}, "inv-typo")
	require.NoError(t, err)
	require.Equal(t, []string{"Weat"}, result.Skipped)
	require.Len(t, result.Transactions, 2)

	assert.InDelta(t, 9.0, itemStock(t, store, "Wheat"), 1e-9)
	// Packaging moves with the full 90kg, the typo line included.
	assert.InDelta(t, 17.0, itemStock(t, store, catalog.BardanaName), 1e-9)
}

func TestApplySaleExactNameMatchIsCaseSensitive(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 10},
	)

	result, err := engine.ApplySale(context.Background(), []LineItem{{Name: "wheat", QuantityKg: 30}}, "inv-case")
	require.NoError(t, err)
	assert.Equal(t, []string{"wheat"}, result.Skipped)
	assert.InDelta(t, 10.0, itemStock(t, store, "Wheat"), 1e-9)
}

func TestApplySaleRejectsNegativeQuantity(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 10},
	)

	_, err := engine.ApplySale(context.Background(), []LineItem{{Name: "Wheat", QuantityKg: -5}}, "inv-bad")
	require.ErrorIs(t, err, ErrNegativeQuantity)
	assert.InDelta(t, 10.0, itemStock(t, store, "Wheat"), 1e-9)
}

func TestApplyPurchaseIncreasesStockAndPackaging(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Rice", Category: catalog.CategoryPrimary, StockBags: 2},
		catalog.Item{Name: catalog.BardanaName, Category: catalog.CategoryPrimary, StockBags: 5, IsUniversal: true},
	)

	result, err := engine.ApplyPurchase(context.Background(), []LineItem{
		{Name: "Rice", QuantityKg: 90, Rate: 40},
	}, "bill-1")
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)

	assert.InDelta(t, 5.0, itemStock(t, store, "Rice"), 1e-9)
	assert.InDelta(t, 8.0, itemStock(t, store, catalog.BardanaName), 1e-9)
	assert.Equal(t, TransactionTypePurchase, result.Transactions[0].Type)
	assert.Equal(t, PartyTypeSupplier, result.Transactions[0].PartyType)
}

func TestApplyPurchaseIdempotentPerBill(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Rice", Category: catalog.CategoryPrimary, StockBags: 2},
	)

	lines := []LineItem{{Name: "Rice", QuantityKg: 30}}
	_, err := engine.ApplyPurchase(context.Background(), lines, "bill-dup")
	require.NoError(t, err)

	second, err := engine.ApplyPurchase(context.Background(), lines, "bill-dup")
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.InDelta(t, 3.0, itemStock(t, store, "Rice"), 1e-9)
}

func TestRevertSaleRestoresStockAndSkipsGuard(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 10},
		catalog.Item{Name: catalog.BardanaName, Category: catalog.CategoryPrimary, StockBags: 20, IsUniversal: true},
	)

	lines := []LineItem{{Name: "Wheat", QuantityKg: 60}}
	_, err := engine.ApplySale(context.Background(), lines, "inv-rev")
	require.NoError(t, err)

	// The guard already knows inv-rev; reverting must still run.
	result, err := engine.RevertSale(context.Background(), lines, "inv-rev")
	require.NoError(t, err)
	require.Len(t, result.Transactions, 2)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, TransactionTypeReturn, result.Transactions[0].Type)

	assert.InDelta(t, 10.0, itemStock(t, store, "Wheat"), 1e-9)
	assert.InDelta(t, 20.0, itemStock(t, store, catalog.BardanaName), 1e-9)
}

func TestPostAdjustment(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 2},
		catalog.Item{Name: catalog.BardanaName, Category: catalog.CategoryPrimary, StockBags: 20, IsUniversal: true},
	)

	txn, err := engine.PostAdjustment(context.Background(), AdjustmentInput{
		ItemName:   "Wheat",
		QuantityKg: -30,
		Note:       "spillage",
	})
	require.NoError(t, err)
	assert.Equal(t, TransactionTypeAdjustment, txn.Type)
	assert.InDelta(t, 1.0, txn.NewStockBags, 1e-9)
	assert.InDelta(t, 1.0, itemStock(t, store, "Wheat"), 1e-9)
	// Adjustments never touch the packaging item.
	assert.InDelta(t, 20.0, itemStock(t, store, catalog.BardanaName), 1e-9)

	_, err = engine.PostAdjustment(context.Background(), AdjustmentInput{ItemName: "Wheat", QuantityKg: 0})
	require.ErrorIs(t, err, ErrZeroQuantity)

	_, err = engine.PostAdjustment(context.Background(), AdjustmentInput{ItemName: "Missing", QuantityKg: 30})
	require.ErrorIs(t, err, catalog.ErrItemNotFound)
}

func TestCurrentStockKgAndSufficiency(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 2.5},
	)

	kg, err := engine.CurrentStockKg(context.Background(), "Wheat")
	require.NoError(t, err)
	assert.InDelta(t, 75.0, kg, 1e-9)

	kg, err = engine.CurrentStockKg(context.Background(), "Missing")
	require.NoError(t, err)
	assert.Zero(t, kg)

	ok, err := engine.HasSufficientStock(context.Background(), "Wheat", 75)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.HasSufficientStock(context.Background(), "Wheat", 76)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListTransactionsNewestFirstWithFilters(t *testing.T) {
	engine, store := newTestEngine(t)
	seedItems(t, store,
		catalog.Item{Name: "Wheat", Category: catalog.CategoryPrimary, StockBags: 10},
		catalog.Item{Name: "Rice", Category: catalog.CategoryPrimary, StockBags: 10},
	)

	_, err := engine.ApplySale(context.Background(), []LineItem{{Name: "Wheat", QuantityKg: 30}}, "inv-a")
	require.NoError(t, err)
	_, err = engine.ApplyPurchase(context.Background(), []LineItem{{Name: "Rice", QuantityKg: 30}}, "bill-b")
	require.NoError(t, err)

	all, err := engine.ListTransactions(context.Background(), TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, TransactionTypePurchase, all[0].Type)

	wheatOnly, err := engine.ListTransactions(context.Background(), TransactionFilter{ItemName: "Wheat"})
	require.NoError(t, err)
	require.Len(t, wheatOnly, 1)
	assert.Equal(t, "inv-a", wheatOnly[0].ReferenceID)

	limited, err := engine.ListTransactions(context.Background(), TransactionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestEnsureBardanaIdempotent(t *testing.T) {
	engine, store := newTestEngine(t)

	require.NoError(t, engine.EnsureBardana(context.Background()))
	require.NoError(t, engine.EnsureBardana(context.Background()))

	items, err := docstore.Load[catalog.Item](context.Background(), store, docstore.CollectionItems)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, catalog.BardanaName, items[0].Name)
	assert.True(t, items[0].IsUniversal)

	txns, err := docstore.Load[Transaction](context.Background(), store, docstore.CollectionStockTransactions)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, TransactionTypeOpeningStock, txns[0].Type)
}
